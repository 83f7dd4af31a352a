// Package sqlxrepos implements the repositories on postgres through sqlx.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
)

// postgres error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// storeErr maps driver errors to core errors: no rows become core.ErrNotFound and
// constraint violations become a core.StoreError of the matching kind.
func storeErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == sql.ErrNoRows {
		return core.ErrNotFound
	}

	kind := core.StoreFailure
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			kind = core.StoreUniqueViolation
		case pqForeignKeyViolation:
			kind = core.StoreForeignKeyViolation
		}
	}
	return core.NewStoreError(kind, errors.Wrap(err, msg))
}

// where accumulates AND-ed conditions written with `?` placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// build expands IN (?) slices and rebinds the query for db's driver.
func (w where) build(db *sqlx.DB, query, suffix string) (string, []interface{}, error) {
	if len(w.conds) > 0 {
		query += " WHERE " + strings.Join(w.conds, " AND ")
	}
	query += " " + suffix

	q, args, err := sqlx.In(query, w.args...)
	if err != nil {
		return "", nil, err
	}
	return db.Rebind(q), args, nil
}

// emptyIn reports whether an optional IN (...) restriction can match nothing.
// A nil list does not restrict.
func emptyIn(lists ...[]string) bool {
	for _, l := range lists {
		if l != nil && len(l) == 0 {
			return true
		}
	}
	return false
}

// columns of school.ClassSummary nested under "class"; expects classes c and subjects s
const classSummaryColumns = `c.class_id AS "class.class_id", c.semester AS "class.semester",
	c.academic_year AS "class.academic_year", s.subject_name AS "class.subject_name",
	s.subject_code AS "class.subject_code"`
