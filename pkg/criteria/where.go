package criteria

import (
	"github.com/jackc/pgx/v5"
)

// Clause is a composed WHERE condition, without the WHERE keyword.
type Clause struct {
	SQL  string
	Args pgx.NamedArgs
}

func (c Clause) IsEmpty() bool {
	return c.SQL == ""
}

// Compose folds predicates left to right: each one is joined to everything
// before it with its own conjunction, the way andWhere/orWhere chain.
func Compose(preds []Predicate) Clause {
	clause := Clause{Args: pgx.NamedArgs{}}
	for _, p := range preds {
		for k, v := range p.Args {
			clause.Args[k] = v
		}
		if clause.SQL == "" {
			clause.SQL = p.SQL
			continue
		}
		clause.SQL = "(" + clause.SQL + ") " + string(p.Conj) + " (" + p.SQL + ")"
	}
	return clause
}

// Build translates and composes in one step.
func Build(cs Criteria, baseAlias string) (Clause, error) {
	preds, err := Translate(cs, baseAlias)
	if err != nil {
		return Clause{}, err
	}
	return Compose(preds), nil
}

// And returns the clause extended with extra predicates. A parameter name
// bound twice is rejected with ErrDuplicateParam.
func (c Clause) And(preds ...Predicate) (Clause, error) {
	used := make(map[string]struct{}, len(c.Args))
	for name := range c.Args {
		used[name] = struct{}{}
	}
	for _, p := range preds {
		for name := range p.Args {
			if _, dup := used[name]; dup {
				return Clause{}, invalid(ErrDuplicateParam, "parameter %q is bound twice", name)
			}
			used[name] = struct{}{}
		}
	}

	all := []Predicate{{Conj: And, SQL: c.SQL, Args: c.Args}}
	if c.IsEmpty() {
		all = nil
	}
	return Compose(append(all, preds...)), nil
}
