// Package stats tracks named cache counters (hit, miss, retry, ...) and lets a
// chain of cache tiers compose their counters into one aggregate tree.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	// StatHit is the name of the hit counter.
	StatHit = "hit"
	// StatMiss is the name of the miss counter.
	StatMiss = "miss"
	// StatRetry is the name of the retry counter used by the direct fetcher.
	StatRetry = "retry"

	oneHundred = 100.0

	// UndefinedHitRate is returned by HitRate before any retrieve has happened.
	UndefinedHitRate = -1.0
)

// CacheStatistics is the read side of cache performance counters.
type CacheStatistics interface {
	// Name of the cache for display purposes.
	Name() string
	// HitCount is the number of hits made in cache usage.
	HitCount() int64
	// MissCount is the number of misses made in cache usage.
	MissCount() int64
	// RetrieveCount is the total number of retrieves (hits + misses).
	RetrieveCount() int64
	// Stat retrieves the value of a named stat.
	Stat(statName string) int64
	// HitRate is the hit rate of the cache expressed as a percentage.
	// Returns UndefinedHitRate when nothing has been retrieved yet.
	HitRate() float64
	// CacheStats renders displayable cache statistics.
	CacheStats() string
	// IndividualCacheStatistics retrieves sub cache information, empty when leaf.
	IndividualCacheStatistics() map[string]CacheStatistics
}

// SimpleStats is a basic thread safe CacheStatistics implementation.
type SimpleStats struct {
	name string

	mu      sync.Mutex
	statMap map[string]*atomic.Int64
}

// NewSimpleStats creates a new statistics object with "hit", "miss" and a
// selection of additional stats registered.
func NewSimpleStats(name string, statNames ...string) *SimpleStats {
	s := &SimpleStats{
		name:    name,
		statMap: make(map[string]*atomic.Int64),
	}
	s.statMap[StatHit] = &atomic.Int64{}
	s.statMap[StatMiss] = &atomic.Int64{}
	for _, statName := range statNames {
		s.statMap[statName] = &atomic.Int64{}
	}
	return s
}

// Increment adds one to a named stat, registering it on first use.
func (s *SimpleStats) Increment(statName string) {
	s.counter(statName).Add(1)
}

// Name of the cache.
func (s *SimpleStats) Name() string {
	return s.name
}

// Stat retrieves the value of a named stat.
func (s *SimpleStats) Stat(statName string) int64 {
	return s.counter(statName).Load()
}

// HitCount is the number of cache hits.
func (s *SimpleStats) HitCount() int64 {
	return s.Stat(StatHit)
}

// MissCount is the number of cache misses.
func (s *SimpleStats) MissCount() int64 {
	return s.Stat(StatMiss)
}

// RetrieveCount is hits plus misses.
func (s *SimpleStats) RetrieveCount() int64 {
	return s.HitCount() + s.MissCount()
}

// HitRate is the percentage of retrieves served by this tier.
func (s *SimpleStats) HitRate() float64 {
	retrieves := s.RetrieveCount()
	if retrieves == 0 {
		return UndefinedHitRate
	}
	return float64(s.HitCount()) / float64(retrieves) * oneHundred
}

// IndividualCacheStatistics is empty for a leaf statistic.
func (s *SimpleStats) IndividualCacheStatistics() map[string]CacheStatistics {
	return map[string]CacheStatistics{}
}

// CacheStats renders "<name>: retrieve: <n>, <key>: <v>, ..." with keys sorted
// lexicographically.
func (s *SimpleStats) CacheStats() string {
	s.mu.Lock()
	keys := make([]string, 0, len(s.statMap))
	for key := range s.statMap {
		keys = append(keys, key)
	}
	s.mu.Unlock()
	sort.Strings(keys)

	sb := strings.Builder{}
	sb.WriteString(s.name)
	sb.WriteString(": ")
	sb.WriteString(fmt.Sprintf("retrieve: %d", s.RetrieveCount()))
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf(", %s: %d", key, s.Stat(key)))
	}
	return sb.String()
}

func (s *SimpleStats) counter(statName string) *atomic.Int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	counter, ok := s.statMap[statName]
	if !ok {
		counter = &atomic.Int64{}
		s.statMap[statName] = counter
	}
	return counter
}

// AggregateStats sums two statistics trees, typically a tier and its fallback.
type AggregateStats struct {
	a CacheStatistics
	b CacheStatistics
}

// Combine composes two cache statistics into one sum object.
func Combine(a, b CacheStatistics) *AggregateStats {
	return &AggregateStats{a: a, b: b}
}

// Name joins the child names.
func (s *AggregateStats) Name() string {
	return fmt.Sprintf("%s-%s", s.a.Name(), s.b.Name())
}

// HitCount sums the child hit counts.
func (s *AggregateStats) HitCount() int64 {
	return s.a.HitCount() + s.b.HitCount()
}

// MissCount sums the child miss counts.
func (s *AggregateStats) MissCount() int64 {
	return s.a.MissCount() + s.b.MissCount()
}

// RetrieveCount sums the child retrieve counts.
func (s *AggregateStats) RetrieveCount() int64 {
	return s.a.RetrieveCount() + s.b.RetrieveCount()
}

// Stat sums a named stat across children.
func (s *AggregateStats) Stat(statName string) int64 {
	return s.a.Stat(statName) + s.b.Stat(statName)
}

// HitRate is the percentage of retrieves served across the whole tree.
func (s *AggregateStats) HitRate() float64 {
	retrieves := s.RetrieveCount()
	if retrieves == 0 {
		return UndefinedHitRate
	}
	return float64(s.HitCount()) / float64(retrieves) * oneHundred
}

// IndividualCacheStatistics exposes each sub cache statistics by cache name.
func (s *AggregateStats) IndividualCacheStatistics() map[string]CacheStatistics {
	return map[string]CacheStatistics{
		s.a.Name(): s.a,
		s.b.Name(): s.b,
	}
}

// CacheStats joins the child renderings.
func (s *AggregateStats) CacheStats() string {
	return fmt.Sprintf("%s, %s", s.a.CacheStats(), s.b.CacheStats())
}
