package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core/grade"
)

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

// Insert writes every grade in a single multi-row statement.
func (repo *gradeRepository) Insert(ctx context.Context, grades []grade.Grade) ([]grade.Grade, error) {
	if len(grades) == 0 {
		return []grade.Grade{}, nil
	}

	q := `INSERT INTO grades (grade_id, class_id, student_id, assessment_type, score, max_score)
		VALUES (:grade_id, :class_id, :student_id, :assessment_type, :score, :max_score)`
	if _, err := repo.db.NamedExecContext(ctx, q, grades); err != nil {
		return nil, storeErr(err, "inserting grades")
	}
	return append([]grade.Grade(nil), grades...), nil
}

func (repo *gradeRepository) Query(ctx context.Context, filter grade.Filter) ([]grade.Detail, error) {
	grades := make([]grade.Detail, 0)
	if emptyIn(filter.ClassIDs, filter.StudentIDs) {
		return grades, nil
	}

	var w where
	if filter.ClassID != "" {
		w.add("g.class_id = ?", filter.ClassID)
	}
	if filter.StudentID != "" {
		w.add("g.student_id = ?", filter.StudentID)
	}
	if filter.ClassIDs != nil {
		w.add("g.class_id IN (?)", filter.ClassIDs)
	}
	if filter.StudentIDs != nil {
		w.add("g.student_id IN (?)", filter.StudentIDs)
	}

	base := `SELECT g.grade_id, g.class_id, g.student_id, g.assessment_type, g.score, g.max_score,
			u.first_name AS student_first_name, u.last_name AS student_last_name, u.email AS student_email,
			` + classSummaryColumns + `
		FROM grades g
		JOIN users u ON u.id = g.student_id
		JOIN classes c ON c.class_id = g.class_id
		JOIN subjects s ON s.subject_id = c.subject_id`
	q, args, err := w.build(repo.db, base, "ORDER BY g.assessment_type, u.last_name, u.first_name")
	if err != nil {
		return nil, errors.Wrap(err, "building grades query")
	}

	if err := repo.db.SelectContext(ctx, &grades, q, args...); err != nil {
		return nil, storeErr(err, "querying grades")
	}
	return grades, nil
}
