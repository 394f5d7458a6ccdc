package path_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/operator-framework/searchkit/internal/path"
	"github.com/operator-framework/searchkit/internal/testspace"
	"github.com/operator-framework/searchkit/internal/worker"
	"github.com/operator-framework/searchkit/pkg/search"
)

const u = testspace.Unassigned

type noChoice struct{}

func (noChoice) Alternatives() int {
	return 0
}

// broken branches with a choice that has no alternatives.
type broken struct {
	search.Space
}

func (broken) Choice() search.Choice {
	return noChoice{}
}

func values(s search.Space) []int {
	return s.(*testspace.Space).Values()
}

var _ = Describe("Path", func() {
	var (
		w    *worker.Worker
		p    *path.Path
		tree *testspace.Tree
		s    search.Space
		c0   search.Space
	)

	BeforeEach(func() {
		log, _ := test.NewNullLogger()
		w = worker.New(0, log, nil)
		p = path.New(10)
		tree = &testspace.Tree{Vars: 4, Values: 3}
		s = tree.Root()
	})

	// descend pushes n edges, storing a clone only at the root, and
	// commits the first alternative of each.
	descend := func(n int) {
		for i := 0; i < n; i++ {
			var c search.Space
			if i == 0 {
				c = s.Clone()
				c0 = c
			}
			ch := p.Push(w, s, c, uint64(i))
			s.Commit(ch, 0)
		}
	}

	It("should track entries, depth and memory", func() {
		descend(3)
		Expect(p.Entries()).To(Equal(3))
		Expect(p.Empty()).To(BeFalse())
		Expect(w.Depth).To(Equal(uint64(3)))
		Expect(p.Memory()).To(Equal(c0.(search.Sizer).Allocated()))
		Expect(w.Memory).To(Equal(p.Memory()))
		Expect(p.LC()).To(Equal(0))
	})

	It("should recompute the next node from the root clone", func() {
		descend(3)
		Expect(p.Next()).To(BeTrue())
		Expect(p.Top().Alt()).To(Equal(1))

		var d int
		r := p.Recompute(&d, 100, w)
		Expect(values(r)).To(Equal([]int{0, 0, 1, u}))
		Expect(d).To(Equal(3))
		Expect(values(c0)).To(Equal([]int{u, u, u, u}), "stored clone must not change")
	})

	It("should store an intermediate clone on long recomputations", func() {
		descend(3)
		p.Next()

		var d int
		r := p.Recompute(&d, 2, w)
		Expect(values(r)).To(Equal([]int{0, 0, 1, u}))
		Expect(p.Edge(1).Space()).ToNot(BeNil())
		Expect(values(p.Edge(1).Space())).To(Equal([]int{0, u, u, u}))
		Expect(d).To(Equal(2))
		Expect(p.LC()).To(Equal(1))
	})

	It("should pop exhausted edges", func() {
		descend(2)
		for i := 0; i < 2; i++ {
			Expect(p.Next()).To(BeTrue())
		}
		Expect(p.Top().Rightmost()).To(BeTrue())
		Expect(p.Next()).To(BeTrue())
		Expect(p.Entries()).To(Equal(1))
		Expect(p.Top().Alt()).To(Equal(1))

		p.Next()
		Expect(p.Next()).To(BeFalse())
		Expect(p.Empty()).To(BeTrue())
	})

	It("should hand out the stored clone for the last alternative", func() {
		p = path.New(0)
		descend(1)
		p.Next()
		p.Next()

		var d int
		r := p.Recompute(&d, 2, w)
		Expect(r).To(BeIdenticalTo(c0))
		Expect(values(r)).To(Equal([]int{2, u, u, u}))
		Expect(d).To(Equal(0))
		Expect(p.Memory()).To(Equal(0))

		// the consumed edge is dropped by the next push
		p.Push(w, r, r.Clone(), 9)
		Expect(p.Entries()).To(Equal(1))
		Expect(p.Top().NodeID()).To(Equal(uint64(9)))
	})

	It("should keep reused edges within the nogood depth", func() {
		descend(1)
		p.Next()
		p.Next()

		var d int
		p.Recompute(&d, 2, w)
		Expect(p.Top().Alt()).To(Equal(2))
		Expect(p.Top().Space()).To(BeNil())
	})

	Describe("NoGoods", func() {
		It("should describe the explored alternatives", func() {
			descend(2)
			// x0 moves to its second alternative
			for i := 0; i < 3; i++ {
				p.Next()
			}
			Expect(p.Entries()).To(Equal(1))
			Expect(p.Top().Alt()).To(Equal(1))

			var d int
			s = p.Recompute(&d, 100, w)
			Expect(values(s)).To(Equal([]int{1, u, u, u}))
			// x1 moves to its last alternative
			ch := p.Push(w, s, nil, 4)
			s.Commit(ch, 0)
			p.Next()
			p.Next()

			ng := p.NoGoods()
			Expect(ng.Levels).To(Equal([]search.NoGoodLevel{
				{
					Excluded: []search.Literal{testspace.Literal{Var: 0, Val: 0}},
					Guard:    testspace.Literal{Var: 0, Val: 1},
				},
				{
					Excluded: []search.Literal{testspace.Literal{Var: 1, Val: 0}, testspace.Literal{Var: 1, Val: 1}},
				},
			}))
			Expect(ng.Clauses()).To(HaveLen(3))
		})

		It("should stop at the depth limit", func() {
			p = path.New(1)
			descend(2)
			p.Next()
			Expect(p.NoGoods().Levels).To(BeEmpty())

			p.Next()
			p.Next()
			Expect(p.Entries()).To(Equal(1))
			Expect(p.NoGoods().Levels).To(Equal([]search.NoGoodLevel{
				{Excluded: []search.Literal{testspace.Literal{Var: 0, Val: 0}}},
			}))
		})
	})

	Describe("Steal", func() {
		It("should steal root-most alternatives first", func() {
			descend(2)
			Expect(p.Stealable()).To(BeTrue())

			Expect(values(p.Steal(w))).To(Equal([]int{2, u, u, u}))
			Expect(values(p.Steal(w))).To(Equal([]int{1, u, u, u}))
			Expect(p.Edge(0).Work()).To(BeFalse())

			Expect(values(p.Steal(w))).To(Equal([]int{0, 2, u, u}))
			Expect(values(p.Steal(w))).To(Equal([]int{0, 1, u, u}))
			Expect(p.Stealable()).To(BeFalse())
			Expect(p.Steal(w)).To(BeNil())

			// stolen alternatives are no longer explored
			Expect(p.Next()).To(BeFalse())
		})
	})

	It("should reject choices without alternatives", func() {
		Expect(func() {
			p.Push(w, broken{Space: s}, nil, 0)
		}).To(PanicWith(BeAssignableToTypeOf(&search.MisuseError{})))
	})

	It("should forget everything on reset", func() {
		descend(3)
		p.Reset(5)
		Expect(p.Empty()).To(BeTrue())
		Expect(p.Memory()).To(Equal(0))
		Expect(p.NoGoodsLimit()).To(Equal(5))
	})
})
