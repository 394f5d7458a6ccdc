package fd

type notEqual struct {
	x, y   Var
	offset int
}

func (p notEqual) propagate(s *Space) bool {
	if v, ok := s.Assigned(p.y); ok {
		if !s.remove(p.x, v+p.offset) {
			return false
		}
	}
	if v, ok := s.Assigned(p.x); ok {
		if !s.remove(p.y, v-p.offset) {
			return false
		}
	}
	return true
}

type allDifferent []Var

func (p allDifferent) propagate(s *Space) bool {
	for i, x := range p {
		v, ok := s.Assigned(x)
		if !ok {
			continue
		}
		for j, y := range p {
			if i != j && !s.remove(y, v) {
				return false
			}
		}
	}
	return true
}

type equal struct {
	x   Var
	val int
}

func (p equal) propagate(s *Space) bool {
	return s.assign(p.x, p.val)
}

// objective fails spaces whose lower bound on the objective exceeds the
// bound, and prunes values that would exceed it.
type objective []Term

func (p objective) propagate(s *Space) bool {
	if s.bound == maxBound || len(p) == 0 {
		return true
	}
	lb := 0
	for _, t := range p {
		lb += s.termMin(t)
	}
	if lb > s.bound {
		return false
	}
	for _, t := range p {
		slack := s.bound - (lb - s.termMin(t))
		lo, hi := s.Min(t.Var), s.Max(t.Var)
		for v := lo; v <= hi; v++ {
			if s.Contains(t.Var, v) && t.Coef*v > slack {
				if !s.remove(t.Var, v) {
					return false
				}
			}
		}
	}
	return true
}
