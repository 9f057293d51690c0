package store

import (
	"sort"
	"sync"
	"time"

	"github.com/AngelCh415/campaign-ab/internal/models"
)

type MemoryStore struct {
	mu   sync.RWMutex
	recs map[models.Variant]map[time.Time]models.CampaignRecord
	seen map[string]struct{} // idempotencia por-record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recs: make(map[models.Variant]map[time.Time]models.CampaignRecord),
		seen: make(map[string]struct{}),
	}
}

func (s *MemoryStore) MarkSeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Upsert stores r under its calendar day, replacing any earlier record for that day.
func (s *MemoryStore) Upsert(v models.Variant, r models.CampaignRecord) {
	r.Date = day(r.Date)
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay, ok := s.recs[v]
	if !ok {
		byDay = make(map[time.Time]models.CampaignRecord)
		s.recs[v] = byDay
	}
	byDay[r.Date] = r
}

func (s *MemoryStore) Len(v models.Variant) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs[v])
}

// Dataset returns the variant's records ordered by date.
func (s *MemoryStore) Dataset(v models.Variant) models.VariantDataset {
	return models.VariantDataset{Variant: v, Records: s.Query(v, time.Time{}, time.Time{}, nil)}
}

// Query returns records within [from, to] (zero bounds are open) that pass f, ordered by date.
func (s *MemoryStore) Query(v models.Variant, from, to time.Time, f func(models.CampaignRecord) bool) []models.CampaignRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CampaignRecord, 0, len(s.recs[v]))
	for d, r := range s.recs[v] {
		if !from.IsZero() && d.Before(day(from)) {
			continue
		}
		if !to.IsZero() && d.After(day(to)) {
			continue
		}
		if f == nil || f(r) {
			out = append(out, r)
		}
	}
	// orden determinista
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (s *MemoryStore) Totals(v models.Variant) models.Totals {
	var t models.Totals
	for _, r := range s.Query(v, time.Time{}, time.Time{}, nil) {
		t.Add(r)
	}
	return t
}

// Series returns one value per day for counter c, in date order.
func (s *MemoryStore) Series(v models.Variant, c models.Counter) []float64 {
	recs := s.Query(v, time.Time{}, time.Time{}, nil)
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = c.Value(r)
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
