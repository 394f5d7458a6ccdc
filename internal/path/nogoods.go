package path

import (
	"github.com/operator-framework/searchkit/pkg/search"
)

// NoGoods reads the path, up to the nogood depth limit, as the chain of
// nogoods describing the alternatives already explored. Extraction ends
// at the first choice that cannot describe its alternatives as
// literals.
func (p *Path) NoGoods() search.NoGoods {
	var ng search.NoGoods
	n := len(p.edges)
	if n > p.ngdl {
		n = p.ngdl
	}
	for i := 0; i < n; i++ {
		e := &p.edges[i]
		ch, ok := e.choice.(search.NoGoodChoice)
		if !ok {
			break
		}
		var (
			lvl      search.NoGoodLevel
			complete = true
		)
		ta := e.TrueAlt()
		for a := 0; a < ta; a++ {
			if l := ch.NoGoodLiteral(a); l != nil {
				lvl.Excluded = append(lvl.Excluded, l)
			} else {
				complete = false
			}
		}
		if ta < ch.Alternatives()-1 {
			lvl.Guard = ch.NoGoodLiteral(ta)
			if lvl.Guard == nil {
				complete = false
			}
		}
		if !complete {
			// the deeper levels can no longer be guarded
			lvl.Guard = nil
			ng.Levels = append(ng.Levels, lvl)
			break
		}
		ng.Levels = append(ng.Levels, lvl)
	}
	for len(ng.Levels) > 0 && len(ng.Levels[len(ng.Levels)-1].Excluded) == 0 {
		ng.Levels = ng.Levels[:len(ng.Levels)-1]
	}
	if k := len(ng.Levels); k > 0 {
		ng.Levels[k-1].Guard = nil
	}
	return ng
}
