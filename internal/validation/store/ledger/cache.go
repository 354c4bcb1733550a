package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"veripass/internal/claims"
	"veripass/internal/validation/metrics"
	"veripass/internal/validation/models"
	"veripass/pkg/platform/circuit"
)

const cacheKeyPrefix = "veripass:validated:"

// Store is the ledger persistence contract the cache decorates.
type Store interface {
	Exists(ctx context.Context, claim *claims.Record) (bool, error)
	Record(ctx context.Context, rec *models.ValidationRecord) error
	DeleteByPassportNumber(ctx context.Context, passportNumber string) error
	ListAll(ctx context.Context) ([]*models.ValidationRecord, error)
}

// CachedStore layers a Redis read path over another ledger store. The cache
// holds the recorded claim keyed by passport number so Exists can answer
// without touching the backing store; the comparator still decides
// equivalence on a hit. Redis trouble degrades to the backing store, never
// to a wrong answer.
type CachedStore struct {
	inner   Store
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *circuit.Breaker
}

// NewCached wraps inner with a Redis cache. Metrics may be nil.
func NewCached(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
		breaker: circuit.New("ledger-cache"),
	}
}

// Exists answers from the cache when possible and falls back to the backing
// store on a miss or a Redis failure. Reads are skipped entirely while the
// circuit is open; writes keep probing Redis so the circuit can close again.
func (s *CachedStore) Exists(ctx context.Context, claim *claims.Record) (bool, error) {
	if s.breaker.IsOpen() {
		return s.inner.Exists(ctx, claim)
	}

	data, err := s.client.Get(ctx, cacheKey(claim.PassportNumber)).Bytes()
	switch {
	case err == nil:
		s.observeRedis(nil)
		var cached claims.Record
		if uerr := json.Unmarshal(data, &cached); uerr == nil {
			s.recordHit()
			return cached.Matches(claim), nil
		}
		// Undecodable entry: drop it and consult the backing store.
		s.client.Del(ctx, cacheKey(claim.PassportNumber))
	case errors.Is(err, redis.Nil):
		s.observeRedis(nil)
		s.recordMiss()
	default:
		s.observeRedis(err)
		s.logger.Warn("ledger cache read failed", "error", err)
	}
	return s.inner.Exists(ctx, claim)
}

// Record writes through to the backing store first; the cache entry is only
// populated once the store accepted the claim.
func (s *CachedStore) Record(ctx context.Context, rec *models.ValidationRecord) error {
	if err := s.inner.Record(ctx, rec); err != nil {
		return err
	}
	payload, err := json.Marshal(rec.Claim)
	if err != nil {
		return fmt.Errorf("encode ledger cache entry: %w", err)
	}
	if err := s.client.Set(ctx, cacheKey(rec.Claim.PassportNumber), payload, s.ttl).Err(); err != nil {
		s.observeRedis(err)
		s.logger.Warn("ledger cache write failed", "error", err)
	} else {
		s.observeRedis(nil)
	}
	return nil
}

// DeleteByPassportNumber invalidates the cache entry before delegating, so a
// failed delete never leaves a stale positive behind.
func (s *CachedStore) DeleteByPassportNumber(ctx context.Context, passportNumber string) error {
	if err := s.client.Del(ctx, cacheKey(passportNumber)).Err(); err != nil {
		s.observeRedis(err)
		s.logger.Warn("ledger cache invalidation failed", "error", err)
	} else {
		s.observeRedis(nil)
	}
	return s.inner.DeleteByPassportNumber(ctx, passportNumber)
}

// ListAll always reads the backing store.
func (s *CachedStore) ListAll(ctx context.Context) ([]*models.ValidationRecord, error) {
	return s.inner.ListAll(ctx)
}

// observeRedis feeds the circuit breaker. Cache invalidation must always be
// attempted, so those writes double as recovery probes while the circuit is
// open.
func (s *CachedStore) observeRedis(err error) {
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.Info("ledger cache circuit closed, resuming cache reads")
		}
		return
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.Warn("ledger cache circuit opened, bypassing cache reads")
	}
}

func (s *CachedStore) recordHit() {
	if s.metrics != nil {
		s.metrics.RecordCacheHit()
	}
}

func (s *CachedStore) recordMiss() {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}
}

func cacheKey(passportNumber string) string {
	return cacheKeyPrefix + passportNumber
}
