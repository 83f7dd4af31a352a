package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core/school"
)

const (
	subjectColumns = `subject_id, subject_code, subject_name, credits`

	classDetailQuery = `SELECT c.class_id, c.subject_id, c.teacher_id, c.semester, c.academic_year,
			s.subject_id AS "subject.subject_id", s.subject_code AS "subject.subject_code",
			s.subject_name AS "subject.subject_name", s.credits AS "subject.credits",
			t.id AS "teacher.id", t.first_name AS "teacher.first_name", t.last_name AS "teacher.last_name",
			t.email AS "teacher.email"
		FROM classes c
		JOIN subjects s ON s.subject_id = c.subject_id
		JOIN users t ON t.id = c.teacher_id`

	enrollmentDetailQuery = `SELECT e.enrollment_id, e.student_id, e.class_id, e.status,
			u.id AS "student.id", u.first_name AS "student.first_name", u.last_name AS "student.last_name",
			u.email AS "student.email", ` + classSummaryColumns + `
		FROM enrollments e
		JOIN users u ON u.id = e.student_id
		JOIN classes c ON c.class_id = e.class_id
		JOIN subjects s ON s.subject_id = c.subject_id`
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSubject(ctx context.Context, subj school.Subject) (school.Subject, error) {
	q := `INSERT INTO subjects (subject_id, subject_code, subject_name, credits)
		VALUES (:subject_id, :subject_code, :subject_name, :credits)`
	if _, err := repo.db.NamedExecContext(ctx, q, subj); err != nil {
		return school.Subject{}, storeErr(err, "inserting subject")
	}
	return subj, nil
}

func (repo *schoolRepository) QuerySubjects(ctx context.Context) ([]school.Subject, error) {
	subjects := make([]school.Subject, 0)
	q := `SELECT ` + subjectColumns + ` FROM subjects ORDER BY subject_name, subject_code`
	if err := repo.db.SelectContext(ctx, &subjects, q); err != nil {
		return nil, storeErr(err, "querying subjects")
	}
	return subjects, nil
}

// CreateClass inserts cls and reads it back joined to its subject and teacher.
func (repo *schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.ClassDetail, error) {
	q := `INSERT INTO classes (class_id, subject_id, teacher_id, semester, academic_year)
		VALUES (:class_id, :subject_id, :teacher_id, :semester, :academic_year)`
	if _, err := repo.db.NamedExecContext(ctx, q, cls); err != nil {
		return school.ClassDetail{}, storeErr(err, "inserting class")
	}

	var detail school.ClassDetail
	if err := repo.db.GetContext(ctx, &detail, classDetailQuery+` WHERE c.class_id = $1`, cls.ID); err != nil {
		return school.ClassDetail{}, storeErr(err, "getting class")
	}
	return detail, nil
}

func (repo *schoolRepository) GetClass(ctx context.Context, id string) (school.Class, error) {
	q := `SELECT class_id, subject_id, teacher_id, semester, academic_year FROM classes WHERE class_id = $1`

	var cls school.Class
	if err := repo.db.GetContext(ctx, &cls, q, id); err != nil {
		return school.Class{}, storeErr(err, "getting class")
	}
	return cls, nil
}

func (repo *schoolRepository) QueryClasses(ctx context.Context, filter school.ClassFilter) ([]school.ClassDetail, error) {
	var w where
	if filter.TeacherID != "" {
		w.add("c.teacher_id = ?", filter.TeacherID)
	}
	q, args, err := w.build(repo.db, classDetailQuery, "ORDER BY c.academic_year DESC, c.semester, s.subject_code, c.class_id")
	if err != nil {
		return nil, errors.Wrap(err, "building classes query")
	}

	classes := make([]school.ClassDetail, 0)
	if err := repo.db.SelectContext(ctx, &classes, q, args...); err != nil {
		return nil, storeErr(err, "querying classes")
	}
	return classes, nil
}

func (repo *schoolRepository) CountClasses(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM classes`); err != nil {
		return 0, storeErr(err, "counting classes")
	}
	return n, nil
}

func (repo *schoolRepository) CreateEnrollment(ctx context.Context, enr school.Enrollment) (school.Enrollment, error) {
	q := `INSERT INTO enrollments (enrollment_id, student_id, class_id, status)
		VALUES (:enrollment_id, :student_id, :class_id, :status)`
	if _, err := repo.db.NamedExecContext(ctx, q, enr); err != nil {
		return school.Enrollment{}, storeErr(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo *schoolRepository) QueryEnrollments(ctx context.Context, filter school.EnrollmentFilter) ([]school.EnrollmentDetail, error) {
	enrollments := make([]school.EnrollmentDetail, 0)
	if emptyIn(filter.ClassIDs) {
		return enrollments, nil
	}

	var w where
	if filter.ClassID != "" {
		w.add("e.class_id = ?", filter.ClassID)
	}
	if filter.StudentID != "" {
		w.add("e.student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		w.add("e.status = ?", filter.Status)
	}
	if filter.ClassIDs != nil {
		w.add("e.class_id IN (?)", filter.ClassIDs)
	}
	q, args, err := w.build(repo.db, enrollmentDetailQuery, "ORDER BY s.subject_code, u.last_name, e.enrollment_id")
	if err != nil {
		return nil, errors.Wrap(err, "building enrollments query")
	}

	if err := repo.db.SelectContext(ctx, &enrollments, q, args...); err != nil {
		return nil, storeErr(err, "querying enrollments")
	}
	return enrollments, nil
}

func (repo *schoolRepository) CountEnrollments(ctx context.Context, status string) (int, error) {
	var w where
	if status != "" {
		w.add("status = ?", status)
	}
	q, args, err := w.build(repo.db, `SELECT COUNT(*) FROM enrollments`, "")
	if err != nil {
		return 0, errors.Wrap(err, "building enrollments count")
	}

	var n int
	if err := repo.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, storeErr(err, "counting enrollments")
	}
	return n, nil
}

func (repo *schoolRepository) QueryRoster(ctx context.Context, classID string) ([]school.RosterEntry, error) {
	q := `SELECT e.enrollment_id, e.status, e.student_id,
			to_char(p.date_of_birth, 'YYYY-MM-DD') AS "student.date_of_birth",
			p.enrollment_year AS "student.enrollment_year",
			u.id AS "student.user.id", u.first_name AS "student.user.first_name",
			u.last_name AS "student.user.last_name", u.email AS "student.user.email"
		FROM enrollments e
		JOIN students_profile p ON p.student_id = e.student_id
		JOIN users u ON u.id = e.student_id
		WHERE e.class_id = $1 AND e.status = $2
		ORDER BY u.last_name, u.first_name`

	roster := make([]school.RosterEntry, 0)
	if err := repo.db.SelectContext(ctx, &roster, q, classID, school.EnrollmentActive); err != nil {
		return nil, storeErr(err, "querying roster")
	}
	return roster, nil
}
