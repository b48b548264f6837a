// Package forum implements the data-access and session layer of the Agora
// discussion forum. All state lives in four flat collections plus a single
// session slot inside an injected key-value store; every operation performs a
// synchronous read-modify-write and then waits an artificial delay to emulate
// a network round-trip.
//
// Concurrency model: last writer wins. Two overlapping calls each read the
// whole collection, mutate their own copy and write it back; the second write
// silently overwrites the first. This mirrors the single-client simulation
// the layer stands in for.
package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/agorabbs/agora/config"
	"github.com/agorabbs/agora/store"
)

// Storage keys for the forum collections and the session slot.
const (
	keyUsers    = "users"
	keyTopics   = "topics"
	keyMessages = "messages"
	keyLogs     = "logs"
	keySession  = "session"
)

// timeLayout renders timestamps the way Date.toISOString does: millisecond
// precision, always UTC, trailing Z.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Service is the forum data-access layer.
type Service struct {
	store store.Store
	ids   IDSource
	delay time.Duration
	seed  []config.SeedUser
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIDSource overrides the id allocation strategy.
func WithIDSource(src IDSource) Option {
	return func(s *Service) { s.ids = src }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a forum service on top of the given store. The artificial
// latency and the seed-user list come from the config.
func New(st store.Store, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store: st,
		ids:   UUIDSource{},
		delay: cfg.Latency(),
		seed:  cfg.SeedUsers,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize merges the configured seed users into the users collection,
// skipping usernames that are already present. It must be called once before
// serving; there are no import-time side effects.
func (s *Service) Initialize(ctx context.Context) error {
	users, err := loadList[User](ctx, s, keyUsers)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	var changed bool
	for _, seed := range s.seed {
		if findUser(users, seed.Username) != nil {
			continue
		}
		users = append(users, User{
			Username: seed.Username,
			Password: seed.Password,
			IsAdmin:  seed.IsAdmin,
		})
		changed = true
	}
	if !changed {
		return nil
	}

	if err := saveList(ctx, s, keyUsers, users); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	log.Debug("seed users merged", "total", len(users))
	return nil
}

// Reset deletes all collections and the session slot.
func (s *Service) Reset(ctx context.Context) error {
	for _, key := range []string{keyUsers, keyTopics, keyMessages, keyLogs, keySession} {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to reset %s: %w", key, err)
		}
	}
	return nil
}

// Stats summarizes the stored collections for operational tooling.
type Stats struct {
	Users        int
	Topics       int
	Messages     int
	Logs         int
	LastActivity string
}

// CollectStats counts the stored records. It bypasses the simulated latency.
func (s *Service) CollectStats(ctx context.Context) (*Stats, error) {
	users, err := loadList[User](ctx, s, keyUsers)
	if err != nil {
		return nil, err
	}
	topics, err := loadList[Topic](ctx, s, keyTopics)
	if err != nil {
		return nil, err
	}
	messages, err := loadList[Message](ctx, s, keyMessages)
	if err != nil {
		return nil, err
	}
	logs, err := loadList[LogEntry](ctx, s, keyLogs)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Users:    len(users),
		Topics:   len(topics),
		Messages: len(messages),
		Logs:     len(logs),
	}
	if len(logs) > 0 {
		st.LastActivity = logs[len(logs)-1].Time
	}
	return st, nil
}

// simulate blocks for the configured delay, honoring ctx cancellation. The
// work of an operation is already done by the time simulate runs; the wait
// only shapes the call as a network round-trip.
func (s *Service) simulate(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// delayed applies the simulated latency to an already-computed result.
func delayed[T any](ctx context.Context, s *Service, v T, err error) (T, error) {
	if werr := s.simulate(ctx); werr != nil {
		var zero T
		return zero, werr
	}
	return v, err
}

// delayedErr is delayed for operations without a result value.
func delayedErr(ctx context.Context, s *Service, err error) error {
	if werr := s.simulate(ctx); werr != nil {
		return werr
	}
	return err
}

// loadList reads a whole collection. A missing key is an empty collection.
func loadList[T any](ctx context.Context, s *Service, key string) ([]T, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return list, nil
}

// saveList writes a whole collection back, never as JSON null.
func saveList[T any](ctx context.Context, s *Service, key string, list []T) error {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}
