package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/operator-framework/searchkit/pkg/sat"
)

// Dimacs holds a CNF problem described in DIMACS format
// see: https://logic.pdmi.ras.ru/~basolver/dimacs.html
type Dimacs struct {
	numVariables int
	clauses      [][]sat.Literal
}

// Variables returns the identifiers of the declared variables, "1" to
// "n".
func (d *Dimacs) Variables() []sat.Identifier {
	ids := make([]sat.Identifier, d.numVariables)
	for i := range ids {
		ids[i] = identifier(i + 1)
	}
	return ids
}

func (d *Dimacs) Clauses() [][]sat.Literal {
	return d.clauses
}

func identifier(v int) sat.Identifier {
	return sat.Identifier(strconv.Itoa(v))
}

// NewDimacs parses the DIMACS stream r. Clauses may span several lines
// and a line holding only "%" ends the input.
func NewDimacs(r io.Reader) (*Dimacs, error) {
	var (
		d       *Dimacs
		clause  []sat.Literal
		used    = map[int]struct{}{}
		scanner = bufio.NewScanner(r)
		lineNo  = 0
		header  = 0
	)
scan:
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "c"):
			continue
		case line == "%":
			break scan
		case strings.HasPrefix(line, "p"):
			if d != nil {
				return nil, fmt.Errorf("line %d: duplicate header", lineNo)
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
				return nil, fmt.Errorf("line %d: invalid statement (%s). Valid format is p cnf <variables> <clauses>", lineNo, line)
			}
			vars, err := strconv.Atoi(fields[2])
			if err != nil || vars < 0 {
				return nil, fmt.Errorf("line %d: invalid number (%s) in statement (%s)", lineNo, fields[2], line)
			}
			n, err := strconv.Atoi(fields[3])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: invalid number (%s) in statement (%s)", lineNo, fields[3], line)
			}
			d = &Dimacs{numVariables: vars, clauses: make([][]sat.Literal, 0, n)}
			header = n
		default:
			if d == nil {
				return nil, fmt.Errorf("line %d: missing header 'p cnf <variables> <clauses>'", lineNo)
			}
			for _, field := range strings.Fields(line) {
				v, err := strconv.Atoi(field)
				if err != nil {
					return nil, fmt.Errorf("line %d: %s is not a number", lineNo, field)
				}
				if v == 0 {
					if len(clause) == 0 {
						return nil, fmt.Errorf("line %d: empty clause", lineNo)
					}
					d.clauses = append(d.clauses, clause)
					clause = nil
					continue
				}
				lit := sat.Literal{Negated: v < 0}
				if v < 0 {
					v = -v
				}
				lit.ID = identifier(v)
				if v > d.numVariables {
					return nil, fmt.Errorf("line %d: %s is not a valid variable", lineNo, field)
				}
				used[v] = struct{}{}
				clause = append(clause, lit)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dimacs data: %w", err)
	}

	switch {
	case d == nil || d.numVariables == 0 || len(d.clauses) == 0:
		return nil, fmt.Errorf("invalid format: no variables or clauses found")
	case len(clause) > 0:
		return nil, fmt.Errorf("invalid format: last clause does not end with 0")
	case len(d.clauses) != header:
		return nil, fmt.Errorf("invalid format: header declares %d clauses, found %d", header, len(d.clauses))
	case len(used) != d.numVariables:
		return nil, fmt.Errorf("invalid format: header declares %d variables, clauses use %d", d.numVariables, len(used))
	}
	return d, nil
}
