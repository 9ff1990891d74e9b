package snapshot

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/storefront-cart/internal/cache"
	"github.com/noah-isme/storefront-cart/internal/lock"
)

// KV is the byte store holding snapshots.
type KV interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}

// Store reads and writes cart snapshots. Read-modify-write updates run under
// a per-snapshot lock.
type Store struct {
	kv      KV
	locker  lock.Locker
	lockTTL time.Duration
	logger  zerolog.Logger
}

// NewStore builds a snapshot store.
func NewStore(kv KV, locker lock.Locker, logger zerolog.Logger) *Store {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Store{kv: kv, locker: locker, lockTTL: 5 * time.Second, logger: logger}
}

// Save replaces the snapshot under key.
func (s *Store) Save(ctx context.Context, key string, records []Record) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := s.kv.Save(ctx, cache.KeySnapshot(key), data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the valid records under key. Missing, malformed and
// foreign-version payloads read as empty.
func (s *Store) Load(ctx context.Context, key string) ([]Record, error) {
	data, ok, err := s.kv.Load(ctx, cache.KeySnapshot(key))
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	records, discarded, err := Decode(data)
	if err != nil {
		s.logger.Warn().Err(err).Str("snapshot", key).Msg("snapshot_discarded")
		return nil, nil
	}
	if discarded > 0 {
		s.logger.Warn().Int("discarded", discarded).Str("snapshot", key).Msg("snapshot_records_discarded")
	}
	return records, nil
}

// Upsert replaces the record sharing rec's selector, or appends it.
func (s *Store) Upsert(ctx context.Context, key string, rec Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("snapshot record: %w", err)
	}
	return s.update(ctx, key, func(records []Record) []Record {
		if i := IndexBySelector(records, rec.SelectorID); i >= 0 {
			records[i] = rec
			return records
		}
		return append(records, rec)
	})
}

// Remove deletes the record with selectorID.
func (s *Store) Remove(ctx context.Context, key, selectorID string) error {
	return s.update(ctx, key, func(records []Record) []Record {
		return slices.DeleteFunc(records, func(r Record) bool { return r.SelectorID == selectorID })
	})
}

// Clear deletes the snapshot under key.
func (s *Store) Clear(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, cache.KeySnapshot(key))
}

func (s *Store) update(ctx context.Context, key string, mutate func([]Record) []Record) error {
	return s.locker.WithLock(ctx, cache.KeySnapshotLock(key), s.lockTTL, func(ctx context.Context) error {
		records, err := s.Load(ctx, key)
		if err != nil {
			return err
		}
		return s.Save(ctx, key, mutate(records))
	})
}
