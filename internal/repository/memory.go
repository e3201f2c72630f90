package repository

import (
	"context"
	"sync"

	"github.com/GoAMM/hookgate/internal/model"
)

// MemoryStore 保存策略全部键控状态（授权、阈值、挂起槽、指标）
// 用于测试与无 Redis 的单机部署。生产环境请用 RedisStore。
type MemoryStore struct {
	mu               sync.RWMutex
	defaultThreshold uint64
	venueThresholds  map[model.VenueID]uint64
	authorized       map[model.Principal]bool
	pending          map[model.VenueID]model.PendingEntry
	metrics          map[model.VenueID]model.VenueMetrics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		venueThresholds: make(map[model.VenueID]uint64),
		authorized:      make(map[model.Principal]bool),
		pending:         make(map[model.VenueID]model.PendingEntry),
		metrics:         make(map[model.VenueID]model.VenueMetrics),
	}
}

// Seed installs the bootstrap state: the global default threshold and the
// deployer principals that are authorized from creation onward.
func (s *MemoryStore) Seed(ctx context.Context, defaultThreshold uint64, authorized []model.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultThreshold = defaultThreshold
	for _, p := range authorized {
		s.authorized[p] = true
	}
	return nil
}

func (s *MemoryStore) Authorized(ctx context.Context, p model.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authorized[p], nil
}

func (s *MemoryStore) SetAuthorized(ctx context.Context, p model.Principal, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorized[p] = v
	return nil
}

func (s *MemoryStore) DefaultThreshold(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultThreshold, nil
}

func (s *MemoryStore) SetDefaultThreshold(ctx context.Context, v uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultThreshold = v
	return nil
}

func (s *MemoryStore) VenueThreshold(ctx context.Context, venue model.VenueID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.venueThresholds[venue], nil
}

func (s *MemoryStore) SetVenueThreshold(ctx context.Context, venue model.VenueID, v uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.venueThresholds[venue] = v
	return nil
}

func (s *MemoryStore) Pending(ctx context.Context, venue model.VenueID) (model.PendingEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.pending[venue]
	if !ok || !entry.Active {
		return model.PendingEntry{}, false, nil
	}
	return entry, true, nil
}

// PutPending overwrites the single slot for the venue. No queue.
func (s *MemoryStore) PutPending(ctx context.Context, venue model.VenueID, entry model.PendingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[venue] = entry
	return nil
}

func (s *MemoryStore) ClearPending(ctx context.Context, venue model.VenueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.pending[venue]
	entry.Active = false
	s.pending[venue] = entry
	return nil
}

func (s *MemoryStore) IncrRelayed(ctx context.Context, venue model.VenueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.metrics[venue]
	m.RelayedCount++
	s.metrics[venue] = m
	return nil
}

func (s *MemoryStore) IncrExecuted(ctx context.Context, venue model.VenueID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.metrics[venue]
	m.ExecutedCount++
	s.metrics[venue] = m
	return nil
}

func (s *MemoryStore) AddReportedSavings(ctx context.Context, venue model.VenueID, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.metrics[venue]
	m.CumulativeReportedSavings += amount
	s.metrics[venue] = m
	return nil
}

func (s *MemoryStore) Metrics(ctx context.Context, venue model.VenueID) (model.VenueMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics[venue], nil
}
