// Package analytics records per-interaction cost and cache accounting and
// serves rolled-up usage metrics. Everything is held in memory; persisting
// to an external analytics sink is the caller's concern.
package analytics

import (
	"sort"
	"sync"
	"time"
)

// Interaction is one completed chat turn's accounting.
type Interaction struct {
	Timestamp    time.Time `json:"timestamp"`
	SessionID    string    `json:"session_id"`
	Tokens       int       `json:"tokens"`
	Cost         float64   `json:"cost"`
	Savings      float64   `json:"savings"`
	ResponseTime float64   `json:"response_time"`
	CacheHit     bool      `json:"cache_hit"`
	SkillsUsed   []string  `json:"skills_used,omitempty"`
}

// UsageMetrics is the rolled-up view over a window of interactions.
type UsageMetrics struct {
	TotalSessions   int     `json:"total_sessions"`
	TotalMessages   int     `json:"total_messages"`
	TotalTokensUsed int     `json:"total_tokens_used"`
	TotalCost       float64 `json:"total_cost"`
	TotalSavings    float64 `json:"total_savings"`
	AvgResponseTime float64 `json:"avg_response_time"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
}

// DailyUsage is one day's aggregate.
type DailyUsage struct {
	Date     string  `json:"date"`
	Sessions int     `json:"sessions"`
	Messages int     `json:"messages"`
	Cost     float64 `json:"cost"`
	Tokens   int     `json:"tokens"`
}

// SkillUsage counts how often one skill was applied.
type SkillUsage struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type dailyBucket struct {
	sessions map[string]bool
	messages int
	cost     float64
	tokens   int
}

// Service accumulates interactions.
type Service struct {
	mu           sync.RWMutex
	interactions []Interaction
	daily        map[string]*dailyBucket

	now func() time.Time
}

// NewService creates an empty analytics service.
func NewService() *Service {
	return &Service{
		daily: make(map[string]*dailyBucket),
		now:   time.Now,
	}
}

// Record stores one interaction. A zero Timestamp is stamped with now.
func (s *Service) Record(interaction Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = s.now()
	}
	s.interactions = append(s.interactions, interaction)

	day := interaction.Timestamp.Format("2006-01-02")
	bucket, ok := s.daily[day]
	if !ok {
		bucket = &dailyBucket{sessions: make(map[string]bool)}
		s.daily[day] = bucket
	}
	bucket.sessions[interaction.SessionID] = true
	bucket.messages++
	bucket.cost += interaction.Cost
	bucket.tokens += interaction.Tokens
}

// Usage aggregates the interactions of the last `days` days.
func (s *Service) Usage(days int) UsageMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().AddDate(0, 0, -days)

	var m UsageMetrics
	sessions := make(map[string]bool)
	cacheHits := 0
	totalResponseTime := 0.0

	for _, i := range s.interactions {
		if !i.Timestamp.After(cutoff) {
			continue
		}
		sessions[i.SessionID] = true
		m.TotalMessages++
		m.TotalTokensUsed += i.Tokens
		m.TotalCost += i.Cost
		m.TotalSavings += i.Savings
		totalResponseTime += i.ResponseTime
		if i.CacheHit {
			cacheHits++
		}
	}

	m.TotalSessions = len(sessions)
	if m.TotalMessages > 0 {
		m.AvgResponseTime = totalResponseTime / float64(m.TotalMessages)
		m.CacheHitRate = float64(cacheHits) / float64(m.TotalMessages)
	}
	return m
}

// Daily returns one aggregate per day for the last `days` days, oldest
// first. Days with no traffic are included as zero rows.
func (s *Service) Daily(days int) []DailyUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DailyUsage, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := s.now().AddDate(0, 0, -i).Format("2006-01-02")
		row := DailyUsage{Date: date}
		if bucket, ok := s.daily[date]; ok {
			row.Sessions = len(bucket.sessions)
			row.Messages = bucket.messages
			row.Cost = bucket.cost
			row.Tokens = bucket.tokens
		}
		out = append(out, row)
	}
	return out
}

// SkillUsage counts skill applications across all interactions, most used
// first.
func (s *Service) SkillUsage() []SkillUsage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, i := range s.interactions {
		for _, skill := range i.SkillsUsed {
			counts[skill]++
		}
	}

	out := make([]SkillUsage, 0, len(counts))
	for skill, count := range counts {
		out = append(out, SkillUsage{Skill: skill, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	return out
}
