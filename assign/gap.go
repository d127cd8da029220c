package assign

// relativeGap evaluates the Wardrop convergence indicator at the current
// flows:
//
//	gap = (TSTT − SPTT) / TSTT
//
// where TSTT is total system cost under the objective cost field and SPTT is
// the shortest-path lower bound under the same field. The gap is non-negative
// and tends to zero at equilibrium; round-off below zero at convergence is
// clamped. The second return value is the total system travel time measured
// in actual (non-marginal) travel times, for reporting.
func (s *state) relativeGap() (float64, float64, error) {
	sptt, _, err := s.allOrNothing(s.costs, false)
	if err != nil {
		return 0, 0, err
	}

	var objTotal, realTotal float64
	for i, f := range s.x {
		objTotal += f * s.costs[i]
		realTotal += f * s.times[i]
	}
	if objTotal <= 0 {
		// No demand loaded: trivially at equilibrium.
		return 0, realTotal, nil
	}
	gap := (objTotal - sptt) / objTotal
	if gap < 0 {
		gap = 0
	}

	return gap, realTotal, nil
}
