package sweep

import (
	"sort"
	"sync"

	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/ladder"
)

// Entry is one candidate's final standing.
type Entry struct {
	FullHash     domain.FullHash       `json:"full_hash"`
	ConfigHash   domain.ConfigHash     `json:"config_hash"`
	Config       domain.StrategyConfig `json:"config"`
	Score        float64               `json:"score"`
	LevelReached string                `json:"level_reached"`
	Promoted     bool                  `json:"promoted"`
	Reason       string                `json:"reason"`
	Levels       []ladder.LevelResult  `json:"levels"`
}

// Leaderboard ranks candidates by the stability score of the deepest
// level they reached. Safe for concurrent use by sweep workers; no
// lock is ever held across a run.
type Leaderboard struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewLeaderboard() *Leaderboard { return &Leaderboard{} }

// Record inserts one finished candidate.
func (l *Leaderboard) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Top returns the best n entries: fully promoted candidates first,
// then by deepest-level stability score descending, ties broken by
// FullHash for a stable order.
func (l *Leaderboard) Top(n int) []Entry {
	l.mu.RLock()
	sorted := make([]Entry, len(l.entries))
	copy(sorted, l.entries)
	l.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Promoted != sorted[j].Promoted {
			return sorted[i].Promoted
		}
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].FullHash < sorted[j].FullHash
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Len reports how many candidates have finished.
func (l *Leaderboard) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
