package dimacs_test

import (
	"context"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/searchkit/cmd/dimacs"
	"github.com/operator-framework/searchkit/pkg/sat"
	"github.com/operator-framework/searchkit/pkg/search/engine"
)

func TestDimacs(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dimacs Suite")
}

var _ = Describe("Dimacs", func() {
	DescribeTable("should reject invalid input",
		func(problem string) {
			_, err := dimacs.NewDimacs(strings.NewReader(problem))
			Expect(err).To(HaveOccurred())
		},
		Entry("no header", "1 2 3 0\n"),
		Entry("no clauses", "p cnf 3 3\n"),
		Entry("bad header", "p dnf 3 1\n1 2 3 0\n"),
		Entry("duplicate header", "p cnf 1 1\np cnf 1 1\n1 0\n"),
		Entry("unknown variable", "p cnf 2 1\n1 3 0\n"),
		Entry("not a number", "p cnf 2 1\n1 x 0\n"),
		Entry("unterminated clause", "p cnf 2 1\n1 2\n"),
		Entry("clause count", "p cnf 2 2\n1 2 0\n"),
		Entry("unused variable", "p cnf 3 1\n1 2 0\n"),
		Entry("empty clause", "p cnf 1 1\n0\n"),
	)

	It("should parse valid dimacs", func() {
		problem := "c a comment\np cnf 3 2\n1 -2 3 0\n-1\n2 0\n"
		d, err := dimacs.NewDimacs(strings.NewReader(problem))
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Variables()).To(Equal([]sat.Identifier{"1", "2", "3"}))
		Expect(d.Clauses()).To(Equal([][]sat.Literal{
			{sat.Pos("1"), sat.Neg("2"), sat.Pos("3")},
			{sat.Neg("1"), sat.Pos("2")},
		}))
	})

	It("should stop at a percent line", func() {
		d, err := dimacs.NewDimacs(strings.NewReader("p cnf 1 1\n1 0\n%\n0\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(d.Clauses()).To(HaveLen(1))
	})
})

var _ = Describe("Dimacs Model", func() {
	It("should create variables for a dimacs problem", func() {
		d, err := dimacs.NewDimacs(strings.NewReader("p cnf 3 2\n1 2 3 0\n2 -3 0\n"))
		Expect(err).ToNot(HaveOccurred())
		variables := dimacs.GenerateVariables(d)
		Expect(variables).To(HaveLen(3))

		Expect(variables[0].Identifier()).To(Equal(sat.Identifier("1")))
		Expect(variables[0].Constraints()).To(HaveLen(1))
		Expect(variables[1].Identifier()).To(Equal(sat.Identifier("2")))
		Expect(variables[1].Constraints()).To(HaveLen(1))
		Expect(variables[2].Identifier()).To(Equal(sat.Identifier("3")))
		Expect(variables[2].Constraints()).To(BeEmpty())
	})

	It("should solve the problem", func() {
		d, err := dimacs.NewDimacs(strings.NewReader("p cnf 2 2\n1 2 0\n1 -2 0\n"))
		Expect(err).ToNot(HaveOccurred())
		m, err := dimacs.NewModel(d, true)
		Expect(err).ToNot(HaveOccurred())

		e, err := engine.BAB(m.Root())
		Expect(err).ToNot(HaveOccurred())
		defer e.Close()
		var best *sat.Space
		for s := e.Next(context.Background()); s != nil; s = e.Next(context.Background()) {
			best = s.(*sat.Space)
		}
		Expect(best).ToNot(BeNil())
		Expect(best.Value("1")).To(BeTrue())
		Expect(best.Value("2")).To(BeFalse())
	})

	It("should report conflicts", func() {
		d, err := dimacs.NewDimacs(strings.NewReader("p cnf 1 2\n1 0\n-1 0\n"))
		Expect(err).ToNot(HaveOccurred())
		m, err := dimacs.NewModel(d, false)
		Expect(err).ToNot(HaveOccurred())
		Expect(m.Conflicts()).To(HaveLen(2))
	})
})
