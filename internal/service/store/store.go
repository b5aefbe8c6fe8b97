package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

// Notifier is the toast sink for degradation-ladder outcomes.
type Notifier interface {
	Notify(message, level string)
}

// Store owns the single serialized state document. Every mutation follows
// read-merge-write against the key-value backend, so independent scoped
// writers within the same turn cannot lose each other's updates.
type Store struct {
	log    *slog.Logger
	kv     storage.KeyValueStore
	key    string
	notify Notifier

	// Serializes load-mutate-save cycles. The document model is single-user;
	// this only guards the server's own concurrent handlers.
	mu sync.Mutex
}

func New(log *slog.Logger, kv storage.KeyValueStore, key string, notifier Notifier) *Store {
	if key == "" {
		key = storage.StateKey
	}
	return &Store{log: log, kv: kv, key: key, notify: notifier}
}

// Load reads the document and merges it over the current defaults, so every
// key exists even in documents written by older schema versions. Corrupt or
// missing data silently degrades to a fresh default document.
func (s *Store) Load(ctx context.Context) storage.PersistedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadState(ctx)
}

func (s *Store) loadState(ctx context.Context) storage.PersistedState {
	var state storage.PersistedState
	if err := fromMap(s.loadMap(ctx), &state); err != nil {
		s.log.Warn("state document does not fit the schema, using defaults", slog.String("error", err.Error()))
		return storage.DefaultState()
	}
	return state
}

func (s *Store) loadMap(ctx context.Context) map[string]any {
	const op = "service.store.loadMap"

	defaults := toMap(storage.DefaultState())

	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("state document unreadable, using defaults",
				slog.String("op", op), slog.String("error", err.Error()))
		}
		return defaults
	}

	var saved map[string]any
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		s.log.Warn("state document corrupt, using defaults",
			slog.String("op", op), slog.String("error", err.Error()))
		return defaults
	}

	return deepMerge(defaults, saved)
}

// Save persists a full document, stamping the schema version and bumping the
// save counter. On a quota failure the degradation ladder runs: compress
// embedded images, then strip them, then fail loudly.
func (s *Store) Save(ctx context.Context, state storage.PersistedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveMap(ctx, toMap(state))
}

func (s *Store) saveMap(ctx context.Context, m map[string]any) error {
	const op = "service.store.saveMap"

	m["schemaVersion"] = storage.SchemaVersion
	m["version"] = storage.StateVersion

	err := s.write(ctx, m)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Step 1: recompress oversized images and retry.
	if visitStateImages(m, shrinkImage) {
		if err := s.write(ctx, m); err == nil {
			s.sendNotice("storage low, images compressed", "warning")
			return nil
		} else if !errors.Is(err, storage.ErrQuotaExceeded) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	// Step 2: strip every embedded image outright and retry.
	visitStateImages(m, func(string) string { return "" })
	if err := s.write(ctx, m); err == nil {
		s.sendNotice("storage full, images removed", "error")
		return nil
	} else if !errors.Is(err, storage.ErrQuotaExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Step 3: nothing fit. The latest mutation is not durable.
	s.sendNotice("storage critically full, latest changes were not saved", "critical")
	return fmt.Errorf("%s: %w", op, storage.ErrQuotaExceeded)
}

func (s *Store) write(ctx context.Context, m map[string]any) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, string(payload))
}

func (s *Store) sendNotice(message, level string) {
	if s.notify != nil {
		s.notify.Notify(message, level)
	}
}
