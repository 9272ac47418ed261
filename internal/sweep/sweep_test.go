package sweep

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
)

func TestGridExpansionIsCartesianAndOrdered(t *testing.T) {
	g := Grid{
		Signals: []domain.ComponentConfig{
			{ComponentType: "sig_a"}, {ComponentType: "sig_b"},
		},
		Filters: []domain.ComponentConfig{
			{ComponentType: "flt"},
		},
		PositionManagers: []domain.ComponentConfig{
			{ComponentType: "pm_a"}, {ComponentType: "pm_b"}, {ComponentType: "pm_c"},
		},
		ExecutionModels: []domain.ComponentConfig{
			{ComponentType: "em"},
		},
		Sizers: []domain.ComponentConfig{
			{ComponentType: "sz_a"}, {ComponentType: "sz_b"},
		},
	}
	configs := g.Expand()
	require.Len(t, configs, 2*1*3*1*2)

	// Deterministic ordering: first candidate is all-first components,
	// the sizer varies fastest.
	require.Equal(t, "sig_a", configs[0].Signal.ComponentType)
	require.Equal(t, "sz_a", configs[0].Sizer.ComponentType)
	require.Equal(t, "sz_b", configs[1].Sizer.ComponentType)
	require.Equal(t, "pm_b", configs[2].PositionManager.ComponentType)
}

func TestDefaultGridExpands(t *testing.T) {
	configs := DefaultGrid().Expand()
	require.Equal(t, 4*2*5*2*2, len(configs))
}

func TestLeaderboardRanksPromotedFirstThenScore(t *testing.T) {
	board := NewLeaderboard()
	board.Record(Entry{FullHash: "cc", Score: 2.0, Promoted: false})
	board.Record(Entry{FullHash: "aa", Score: 0.5, Promoted: true})
	board.Record(Entry{FullHash: "bb", Score: 1.5, Promoted: true})

	top := board.Top(0)
	require.Len(t, top, 3)
	require.Equal(t, domain.FullHash("bb"), top[0].FullHash)
	require.Equal(t, domain.FullHash("aa"), top[1].FullHash)
	require.Equal(t, domain.FullHash("cc"), top[2].FullHash)
}

func TestLeaderboardTopLimits(t *testing.T) {
	board := NewLeaderboard()
	for _, h := range []string{"a", "b", "c", "d"} {
		board.Record(Entry{FullHash: domain.FullHash(h)})
	}
	require.Len(t, board.Top(2), 2)
	require.Equal(t, 4, board.Len())
}
