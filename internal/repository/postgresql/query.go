package postgresql

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/validator"
)

// conditions accumulates WHERE clauses with positional args.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends clause, replacing each ? with the next $n placeholder bound to arg.
func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(c.args))))
}

// raw appends a clause that takes no argument.
func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET for a 1-based page and returns the clause.
func (c *conditions) page(page, limit int) string {
	page, limit = normalizePage(page, limit)
	c.args = append(c.args, limit, (page-1)*limit)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(c.args)-1, len(c.args))
}

func normalizePage(page, limit int) (int, int) {
	return validator.NormalizePage(page, limit)
}
