package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/infrastructure"
)

// StoredResult is an annotated workbook awaiting download.
type StoredResult struct {
	ID        string
	Filename  string
	Data      []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ResultStore keeps generated workbooks in memory until they expire.
// Expired entries are purged on every access and by the janitor.
type ResultStore struct {
	mu         sync.Mutex
	items      map[string]*StoredResult
	maxEntries int
	now        func() time.Time
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// NewResultStore creates a store holding at most maxEntries results;
// zero means unlimited.
func NewResultStore(maxEntries int, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ResultStore {
	return &ResultStore{
		items:      make(map[string]*StoredResult),
		maxEntries: maxEntries,
		now:        time.Now,
		metrics:    metrics,
		logger:     infrastructure.WithComponent(logger, "result_store"),
	}
}

// Put stores data under a fresh ID. When the store is full the result
// closest to expiry is evicted.
func (s *ResultStore) Put(ctx context.Context, data []byte, filename string, ttl time.Duration) (*StoredResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(ctx, now)

	if s.maxEntries > 0 && len(s.items) >= s.maxEntries {
		if !s.evictOldestLocked(ctx) {
			return nil, ErrStoreFull
		}
	}

	result := &StoredResult{
		ID:        uuid.NewString(),
		Filename:  filename,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.items[result.ID] = result
	s.gauge(ctx, 1)

	return result, nil
}

// Get returns the result stored under id. Results can be fetched any
// number of times until they expire.
func (s *ResultStore) Get(ctx context.Context, id string) (*StoredResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(ctx, s.now())

	v, ok := s.items[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return v, nil
}

// Delete removes a result and reports whether it was present and live.
func (s *ResultStore) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(ctx, s.now())

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	s.gauge(ctx, -1)
	return true
}

// Len returns the number of live results.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(context.Background(), s.now())
	return len(s.items)
}

// Purge removes expired results and returns how many were removed.
func (s *ResultStore) Purge(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeExpiredLocked(ctx, s.now())
}

// StartJanitor purges expired results every interval until ctx is done.
func (s *ResultStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("janitor stopped")
				return
			case <-ticker.C:
				if n := s.Purge(ctx); n > 0 {
					s.logger.InfoContext(ctx, "purged expired results", slog.Int("count", n))
				}
			}
		}
	}()
}

func (s *ResultStore) purgeExpiredLocked(ctx context.Context, now time.Time) int {
	n := 0
	for k, v := range s.items {
		if !now.Before(v.ExpiresAt) {
			delete(s.items, k)
			n++
		}
	}
	if n > 0 {
		s.gauge(ctx, -int64(n))
		if s.metrics != nil {
			s.metrics.ExpiredResults.Add(ctx, int64(n))
		}
	}
	return n
}

func (s *ResultStore) evictOldestLocked(ctx context.Context) bool {
	var oldest *StoredResult
	for _, v := range s.items {
		if oldest == nil || v.ExpiresAt.Before(oldest.ExpiresAt) {
			oldest = v
		}
	}
	if oldest == nil {
		return false
	}
	delete(s.items, oldest.ID)
	s.gauge(ctx, -1)
	s.logger.WarnContext(ctx, "result store full, evicted result",
		slog.String("result_id", oldest.ID))
	return true
}

func (s *ResultStore) gauge(ctx context.Context, delta int64) {
	if s.metrics != nil {
		s.metrics.StoredResults.Add(ctx, delta)
	}
}
