package assign_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/assign"
	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// PathSetSuite exercises the path-flow decomposition reported by the
// path-based algorithms.
type PathSetSuite struct {
	suite.Suite

	net *network.Network
	dem *network.Demand
	res *assign.Result
}

func (s *PathSetSuite) SetupTest() {
	s.net = braessNet(s.T())
	s.dem = braessDemand(s.T())

	opts := assign.DefaultOptions()
	opts.Algorithm = assign.GradientProjectionExact
	opts.Tolerance = 1e-3
	opts.MaxIterations = 5000

	res, err := assign.Solve(context.Background(), s.net, s.dem, opts)
	require.NoError(s.T(), err)
	require.True(s.T(), res.Converged)
	s.res = res
}

// TestPairs verifies the OD inventory of the set.
func (s *PathSetSuite) TestPairs() {
	require.NotNil(s.T(), s.res.Paths)
	pairs := s.res.Paths.Pairs()
	require.Len(s.T(), pairs, 1)
	require.Equal(s.T(), 1, pairs[0].Origin)
	require.Equal(s.T(), 4, pairs[0].Dest)
	require.Equal(s.T(), 6.0, pairs[0].Volume)

	require.Nil(s.T(), s.res.Paths.Paths(1, 2), "unknown pair must report nil")
}

// TestDecomposition verifies that the path flows are a valid decomposition of
// the demand: non-negative, summing to the OD volume, and each path a
// contiguous origin→destination walk.
func (s *PathSetSuite) TestDecomposition() {
	paths := s.res.Paths.Paths(1, 4)
	require.NotEmpty(s.T(), paths)
	require.LessOrEqual(s.T(), s.res.Paths.Len(), 3, "only three simple routes exist")

	var total float64
	for _, p := range paths {
		require.GreaterOrEqual(s.T(), p.Flow, 0.0)
		total += p.Flow

		require.NotEmpty(s.T(), p.Links)
		require.Equal(s.T(), 1, s.net.Link(p.Links[0]).From)
		require.Equal(s.T(), 4, s.net.Link(p.Links[len(p.Links)-1]).To)
		for i := 1; i < len(p.Links); i++ {
			require.Equal(s.T(), s.net.Link(p.Links[i-1]).To, s.net.Link(p.Links[i]).From,
				"links %d and %d must chain", i-1, i)
		}
	}
	require.InDelta(s.T(), 6.0, total, 1e-9)
}

// TestPathCostsConsistent verifies that each reported path cost is the sum of
// the final link travel times along it.
func (s *PathSetSuite) TestPathCostsConsistent() {
	for _, p := range s.res.Paths.Paths(1, 4) {
		var c float64
		for _, li := range p.Links {
			c += s.res.Times[li]
		}
		require.InDelta(s.T(), c, p.Cost, 1e-9)
	}
}

// TestUsedPathCostsEqualize verifies the Wardrop condition on the arena: at
// the solved tolerance, paths carrying flow have near-equal costs.
func (s *PathSetSuite) TestUsedPathCostsEqualize() {
	var lo, hi float64
	first := true
	for _, p := range s.res.Paths.Paths(1, 4) {
		if p.Flow < 1e-3 {
			continue
		}
		if first {
			lo, hi = p.Cost, p.Cost
			first = false

			continue
		}
		if p.Cost < lo {
			lo = p.Cost
		}
		if p.Cost > hi {
			hi = p.Cost
		}
	}
	require.False(s.T(), first, "at least one path must carry flow")
	require.InDelta(s.T(), lo, hi, 0.1, "used paths must price within the tolerance band")
}

// TestSnapshotIsolated verifies that mutating a returned snapshot does not
// corrupt the arena.
func (s *PathSetSuite) TestSnapshotIsolated() {
	a := s.res.Paths.Paths(1, 4)
	a[0].Links[0] = 99
	b := s.res.Paths.Paths(1, 4)
	require.NotEqual(s.T(), 99, b[0].Links[0])
}

func TestPathSetSuite(t *testing.T) {
	suite.Run(t, new(PathSetSuite))
}
