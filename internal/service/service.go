package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"retailpos/backend/internal/apperr"
	"retailpos/backend/internal/cache"
	"retailpos/backend/internal/domain"
	"retailpos/backend/internal/events"
	"retailpos/backend/internal/ledger"
	"retailpos/backend/internal/metrics"
	"retailpos/backend/internal/store"
	"retailpos/backend/internal/xid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type actorContextKey struct{}
type correlationContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	if !ok || actor.UserID == "" || actor.LocationID == "" {
		return domain.Actor{}, false
	}
	return actor, true
}

// WithCorrelationID tags events emitted by operations run with ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationContextKey{}, id)
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationContextKey{}).(string)
	return id
}

type Service struct {
	store        store.Store
	publisher    events.Publisher
	dashboard    cache.DashboardCache
	dashboardTTL time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time

	// versions counts committed mutations per location. Dashboard reads
	// compare it around their cache write.
	versionMu sync.Mutex
	versions  map[string]uint64
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithDashboardCache(c cache.DashboardCache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.dashboard = c
		}
		if ttl > 0 {
			s.dashboardTTL = ttl
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces the wall clock used for timestamps and day boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:        st,
		publisher:    events.NoopPublisher{},
		dashboard:    cache.NoopDashboardCache{},
		dashboardTTL: 30 * time.Second,
		now:          func() time.Time { return time.Now().UTC() },
		versions:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutation is the scope handed to a write operation. Everything done through
// tx commits or rolls back together; emitted events are held until commit.
type mutation struct {
	ctx    context.Context
	tx     store.Tx
	ledger *ledger.Ledger
	actor  domain.Actor
	now    time.Time
	events []pendingEvent
}

type pendingEvent struct {
	eventType string
	payload   any
}

func (m *mutation) emit(eventType string, payload any) {
	m.events = append(m.events, pendingEvent{eventType: eventType, payload: payload})
}

func (m *mutation) audit(action, entityType, entityID, description string) error {
	err := m.tx.CreateAuditLog(m.ctx, domain.AuditLog{
		ID:          xid.New("audit"),
		LocationID:  m.actor.LocationID,
		ActorID:     m.actor.UserID,
		ActorRole:   m.actor.Role,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		CreatedAt:   m.now,
	})
	if err != nil {
		return fmt.Errorf("write audit log %s: %w", action, err)
	}
	return nil
}

// mutate runs fn in one transaction for the calling actor, then publishes
// the collected events and drops the cached dashboard for the location.
func (s *Service) mutate(ctx context.Context, op string, fn func(m *mutation) error) error {
	started := time.Now()

	actor, ok := ActorFromContext(ctx)
	if !ok {
		err := apperr.New(apperr.Forbidden, "missing actor")
		s.observe(op, started, err)
		return err
	}

	var pending []pendingEvent
	err := s.store.WithinTx(ctx, func(tx store.Tx) error {
		m := &mutation{
			ctx:    ctx,
			tx:     tx,
			ledger: ledger.New(tx),
			actor:  actor,
			now:    s.now(),
		}
		if err := fn(m); err != nil {
			return err
		}
		pending = m.events
		return nil
	})
	s.observe(op, started, err)
	if err != nil {
		return s.fail(op, err)
	}

	s.afterCommit(ctx, actor.LocationID, pending)
	return nil
}

// view runs a read for the calling actor.
func (s *Service) view(ctx context.Context, op string, fn func(q store.Tx, actor domain.Actor) error) error {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return apperr.New(apperr.Forbidden, "missing actor")
	}
	if err := s.store.View(ctx, func(q store.Tx) error { return fn(q, actor) }); err != nil {
		return s.fail(op, err)
	}
	return nil
}

func (s *Service) fail(op string, err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.NotFound, "record not found")
	}
	log.Error().Err(err).Str("component", "service").Str("operation", op).Msg("operation failed")
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) observe(op string, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOperation(op, outcome(err), time.Since(started))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if class := apperr.ClassOf(err); class != apperr.ClassUnknown {
		return class.String()
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.ClassNotFound.String()
	}
	return "error"
}

func (s *Service) afterCommit(ctx context.Context, locationID string, pending []pendingEvent) {
	if len(pending) > 0 {
		envelopes := make([]events.Envelope, 0, len(pending))
		for _, ev := range pending {
			env, err := events.NewEnvelope(ev.eventType, locationID, correlationID(ctx), ev.payload)
			if err != nil {
				log.Warn().Err(err).Str("component", "events").Str("event_type", ev.eventType).Msg("failed to encode event")
				s.observeEvent(ev.eventType, "error")
				continue
			}
			envelopes = append(envelopes, env)
		}

		result := "ok"
		if err := s.publisher.Publish(context.WithoutCancel(ctx), envelopes...); err != nil {
			result = "error"
			log.Warn().Err(err).Str("component", "events").Int("count", len(envelopes)).Msg("failed to publish events")
		}
		for _, env := range envelopes {
			s.observeEvent(env.EventType, result)
		}
	}

	s.bumpVersion(locationID)
	if err := s.dashboard.Invalidate(context.WithoutCancel(ctx), locationID); err != nil {
		log.Warn().Err(err).Str("component", "cache").Str("location_id", locationID).Msg("failed to invalidate dashboard")
	}
}

func (s *Service) bumpVersion(locationID string) {
	s.versionMu.Lock()
	s.versions[locationID]++
	s.versionMu.Unlock()
}

func (s *Service) version(locationID string) uint64 {
	s.versionMu.Lock()
	defer s.versionMu.Unlock()
	return s.versions[locationID]
}

func (s *Service) observeEvent(eventType, result string) {
	if s.metrics != nil {
		s.metrics.ObserveEvent(eventType, result)
	}
}

// notFound maps a store miss to code and passes any other error through.
func notFound(err error, code apperr.Code, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(code, message)
	}
	return err
}

// conflict maps a uniqueness rejection to code and passes any other error through.
func conflict(err error, code apperr.Code, message string) error {
	if errors.Is(err, store.ErrConflict) {
		return apperr.New(code, message)
	}
	return err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
