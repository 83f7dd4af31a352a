package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core/attendance"
)

const attendanceColumns = `attendance_id, class_id, student_id, to_char(date, 'YYYY-MM-DD') AS date, status`

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// Upsert writes every record in a single statement keyed on (class_id, student_id, date).
// Rows that already exist keep their id and take the new status.
func (repo *attendanceRepository) Upsert(ctx context.Context, recs []attendance.Record) ([]attendance.Record, error) {
	saved := make([]attendance.Record, 0, len(recs))
	if len(recs) == 0 {
		return saved, nil
	}

	q, args, err := sqlx.Named(`INSERT INTO attendance (attendance_id, class_id, student_id, date, status)
		VALUES (:attendance_id, :class_id, :student_id, :date, :status)
		ON CONFLICT (class_id, student_id, date) DO UPDATE SET status = EXCLUDED.status
		RETURNING `+attendanceColumns, recs)
	if err != nil {
		return nil, errors.Wrap(err, "building attendance upsert")
	}

	if err := repo.db.SelectContext(ctx, &saved, repo.db.Rebind(q), args...); err != nil {
		return nil, storeErr(err, "upserting attendance")
	}
	return saved, nil
}

func (repo *attendanceRepository) Query(ctx context.Context, filter attendance.Filter) ([]attendance.Detail, error) {
	recs := make([]attendance.Detail, 0)
	if emptyIn(filter.ClassIDs) {
		return recs, nil
	}

	var w where
	if filter.ClassID != "" {
		w.add("a.class_id = ?", filter.ClassID)
	}
	if filter.Date != "" {
		w.add("a.date = ?", filter.Date)
	}
	if filter.StudentID != "" {
		w.add("a.student_id = ?", filter.StudentID)
	}
	if filter.ClassIDs != nil {
		w.add("a.class_id IN (?)", filter.ClassIDs)
	}

	base := `SELECT a.attendance_id, a.class_id, a.student_id, to_char(a.date, 'YYYY-MM-DD') AS date, a.status,
			u.first_name AS student_first_name, u.last_name AS student_last_name,
			` + classSummaryColumns + `
		FROM attendance a
		JOIN users u ON u.id = a.student_id
		JOIN classes c ON c.class_id = a.class_id
		JOIN subjects s ON s.subject_id = c.subject_id`
	q, args, err := w.build(repo.db, base, "ORDER BY a.date DESC, u.last_name, u.first_name")
	if err != nil {
		return nil, errors.Wrap(err, "building attendance query")
	}

	if err := repo.db.SelectContext(ctx, &recs, q, args...); err != nil {
		return nil, storeErr(err, "querying attendance")
	}
	return recs, nil
}
