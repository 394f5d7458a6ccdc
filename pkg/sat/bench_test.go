package sat_test

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/operator-framework/searchkit/pkg/sat"
	"github.com/operator-framework/searchkit/pkg/search"
	"github.com/operator-framework/searchkit/pkg/search/engine"
)

var BenchmarkInput = func() []sat.Variable {
	const (
		length      = 128
		seed        = 9
		pMandatory  = .1
		pDependency = .15
		nDependency = 6
		pConflict   = .05
		nConflict   = 3
	)

	rnd := rand.New(rand.NewSource(seed))
	id := func(i int) sat.Identifier {
		return sat.Identifier(strconv.Itoa(i))
	}
	other := func(i int) sat.Identifier {
		y := i
		for y == i {
			y = rnd.Intn(length)
		}
		return id(y)
	}

	result := make([]sat.Variable, length)
	for i := range result {
		v := sat.NewVariable(id(i))
		if rnd.Float64() < pMandatory {
			v.AddConstraint(sat.Mandatory())
		}
		if rnd.Float64() < pDependency {
			n := rnd.Intn(nDependency-1) + 1
			var d []sat.Identifier
			for x := 0; x < n; x++ {
				d = append(d, other(i))
			}
			v.AddConstraint(sat.Dependency(d...))
		}
		if rnd.Float64() < pConflict {
			n := rnd.Intn(nConflict-1) + 1
			for x := 0; x < n; x++ {
				v.AddConstraint(sat.Conflict(other(i)))
			}
		}
		result[i] = v
	}
	return result
}()

func benchmark(b *testing.B, build func(search.Space) (search.Engine, error)) {
	m, err := sat.NewModel(BenchmarkInput)
	if err != nil {
		b.Fatalf("failed to compile model: %s", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e, err := build(m.Root())
		if err != nil {
			b.Fatalf("failed to create engine: %s", err)
		}
		e.Next(context.Background())
		e.Close()
	}
}

func BenchmarkNewModel(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := sat.NewModel(BenchmarkInput); err != nil {
			b.Fatalf("failed to compile model: %s", err)
		}
	}
}

func BenchmarkDFS(b *testing.B) {
	benchmark(b, func(root search.Space) (search.Engine, error) {
		return engine.DFS(root)
	})
}

func BenchmarkParallel(b *testing.B) {
	benchmark(b, func(root search.Space) (search.Engine, error) {
		return engine.Parallel(root, search.WithThreads(4))
	})
}

func BenchmarkRestart(b *testing.B) {
	benchmark(b, func(root search.Space) (search.Engine, error) {
		return engine.Restart(root, engine.KindDFS, search.WithCutoff(search.Luby(16)))
	})
}
