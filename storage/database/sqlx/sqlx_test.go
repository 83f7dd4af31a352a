package sqlxrepos

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduos/core"
)

func Test_storeErr(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantNotFound   bool
		wantKind       core.StoreErrorKind
		wantConstraint bool
	}{
		{name: "No rows", err: sql.ErrNoRows, wantNotFound: true},
		{name: "Wrapped no rows", err: pkgerrors.Wrap(sql.ErrNoRows, "getting user"), wantNotFound: true},
		{name: "Unique violation", err: &pq.Error{Code: pqUniqueViolation}, wantKind: core.StoreUniqueViolation, wantConstraint: true},
		{name: "Foreign key violation", err: &pq.Error{Code: pqForeignKeyViolation}, wantKind: core.StoreForeignKeyViolation, wantConstraint: true},
		{name: "Other postgres error", err: &pq.Error{Code: "42P01", Message: "relation does not exist"}, wantKind: core.StoreFailure},
		{name: "Connection error", err: errors.New("connection refused"), wantKind: core.StoreFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storeErr(tt.err, "querying")
			if tt.wantNotFound {
				assert.Equal(t, core.ErrNotFound, err)
				return
			}
			var serr *core.StoreError
			require.True(t, errors.As(err, &serr), "got %T", err)
			assert.Equal(t, tt.wantKind, serr.Kind)
			assert.Equal(t, tt.wantConstraint, serr.IsConstraint())
			assert.Contains(t, serr.Error(), "querying")
		})
	}

	assert.NoError(t, storeErr(nil, "querying"))
}

func Test_where_build(t *testing.T) {
	db := sqlx.NewDb(nil, "postgres")

	t.Run("No conditions", func(t *testing.T) {
		var w where
		q, args, err := w.build(db, "SELECT * FROM grades", "ORDER BY grade_id")
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM grades ORDER BY grade_id", q)
		assert.Empty(t, args)
	})

	t.Run("IN lists are expanded and rebound", func(t *testing.T) {
		var w where
		w.add("class_id = ?", "c1")
		w.add("student_id IN (?)", []string{"s1", "s2"})
		q, args, err := w.build(db, "SELECT * FROM grades", "ORDER BY grade_id")
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM grades WHERE class_id = $1 AND student_id IN ($2, $3) ORDER BY grade_id", q)
		assert.Equal(t, []interface{}{"c1", "s1", "s2"}, args)
	})
}

func Test_emptyIn(t *testing.T) {
	assert.False(t, emptyIn())
	assert.False(t, emptyIn(nil, nil), "nil lists do not restrict")
	assert.False(t, emptyIn([]string{"a"}, nil))
	assert.True(t, emptyIn(nil, []string{}))
}
