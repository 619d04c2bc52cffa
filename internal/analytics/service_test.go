package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestService() *Service {
	s := NewService()
	s.now = fixedNow
	return s
}

func TestService_Usage(t *testing.T) {
	s := newTestService()

	s.Record(Interaction{SessionID: "s1", Tokens: 100, Cost: 0.01, Savings: 0.005, ResponseTime: 2, CacheHit: true})
	s.Record(Interaction{SessionID: "s1", Tokens: 200, Cost: 0.02, ResponseTime: 4})
	s.Record(Interaction{SessionID: "s2", Tokens: 50, Cost: 0.005, ResponseTime: 3, CacheHit: true})

	m := s.Usage(30)

	assert.Equal(t, 2, m.TotalSessions)
	assert.Equal(t, 3, m.TotalMessages)
	assert.Equal(t, 350, m.TotalTokensUsed)
	assert.InDelta(t, 0.035, m.TotalCost, 1e-9)
	assert.InDelta(t, 0.005, m.TotalSavings, 1e-9)
	assert.InDelta(t, 3.0, m.AvgResponseTime, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.CacheHitRate, 1e-9)
}

func TestService_UsageEmptyWindow(t *testing.T) {
	s := newTestService()

	m := s.Usage(30)

	assert.Zero(t, m.TotalMessages)
	assert.Zero(t, m.CacheHitRate)
	assert.Zero(t, m.AvgResponseTime)
}

func TestService_UsageWindowExcludesOld(t *testing.T) {
	s := newTestService()

	s.Record(Interaction{SessionID: "old", Timestamp: fixedNow().AddDate(0, 0, -40), Cost: 1})
	s.Record(Interaction{SessionID: "recent", Timestamp: fixedNow().AddDate(0, 0, -1), Cost: 0.5})

	m := s.Usage(30)

	assert.Equal(t, 1, m.TotalSessions)
	assert.InDelta(t, 0.5, m.TotalCost, 1e-9)
}

func TestService_Daily(t *testing.T) {
	s := newTestService()

	s.Record(Interaction{SessionID: "s1", Tokens: 10, Cost: 0.01})
	s.Record(Interaction{SessionID: "s2", Tokens: 20, Cost: 0.02})
	s.Record(Interaction{SessionID: "s1", Timestamp: fixedNow().AddDate(0, 0, -1), Tokens: 5, Cost: 0.005})

	days := s.Daily(3)

	assert.Len(t, days, 3)
	// Oldest first; the last row is today.
	today := days[2]
	assert.Equal(t, "2025-06-15", today.Date)
	assert.Equal(t, 2, today.Sessions)
	assert.Equal(t, 2, today.Messages)
	assert.Equal(t, 30, today.Tokens)

	yesterday := days[1]
	assert.Equal(t, 1, yesterday.Messages)

	assert.Zero(t, days[0].Messages)
}

func TestService_SkillUsage(t *testing.T) {
	s := newTestService()

	s.Record(Interaction{SessionID: "s1", SkillsUsed: []string{"docx", "pptx"}})
	s.Record(Interaction{SessionID: "s1", SkillsUsed: []string{"docx"}})
	s.Record(Interaction{SessionID: "s2", SkillsUsed: []string{"docx"}})

	usage := s.SkillUsage()

	assert.Equal(t, []SkillUsage{
		{Skill: "docx", Count: 3},
		{Skill: "pptx", Count: 1},
	}, usage)
}
