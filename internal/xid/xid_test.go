package xid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeepsPrefixAndIsUnique(t *testing.T) {
	a := New("sale")
	b := New("sale")

	assert.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "sale-"))

	parsed, err := uuid.Parse(strings.TrimPrefix(a, "sale-"))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
