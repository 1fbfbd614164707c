package rowcache

// Subtensors holds the rows fetched for an active working set B (against
// inactive set N) and exposes the lazily-evaluated linear operators the
// chunking trainer's subproblem needs (spec §4.2, §4.3): Q_BB, Q_BN, Q_a,
// plus the materialised diagonal of Q_BB.
type Subtensors struct {
	b, n   []int
	rows   map[int][]float32
	diagBB []float64
	p      int
}

// DiagBB returns the materialised diagonal of Q_BB, indexed by position in
// B (not by original row index).
func (s *Subtensors) DiagBB() []float64 {
	return s.diagBB
}

// QBB applies the B×B block to a vector lambda indexed by position in B,
// returning a vector of the same length.
func (s *Subtensors) QBB(lambda []float64) []float64 {
	out := make([]float64, len(s.b))
	for idx, i := range s.b {
		row := s.rows[i]
		var sum float64
		for idx2, j := range s.b {
			sum += float64(row[j]) * lambda[idx2]
		}
		out[idx] = sum
	}
	return out
}

// QBN applies the B×N block to a vector alphaN indexed by position in N,
// returning a vector indexed by position in B.
func (s *Subtensors) QBN(alphaN []float64) []float64 {
	out := make([]float64, len(s.b))
	for idx, i := range s.b {
		row := s.rows[i]
		var sum float64
		for idx2, j := range s.n {
			sum += float64(row[j]) * alphaN[idx2]
		}
		out[idx] = sum
	}
	return out
}

// QA applies the full rows indexed by B to a vector v indexed by position
// in B, producing a vector of length P — the full-gradient update term
// Q_a(λ*-α_B) of spec §4.2 step 2.6.
func (s *Subtensors) QA(v []float64) []float64 {
	out := make([]float64, s.p)
	for idx, i := range s.b {
		row := s.rows[i]
		w := v[idx]
		if w == 0 {
			continue
		}
		for j := 0; j < s.p; j++ {
			out[j] += float64(row[j]) * w
		}
	}
	return out
}
