package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/user"
)

const (
	userColumns = `id, role, email, password_hash, first_name, last_name, created_at`

	profileColumns = `p.student_id, p.parent_id, to_char(p.date_of_birth, 'YYYY-MM-DD') AS date_of_birth,
		p.enrollment_year`
)

var userOrderingFields = []string{"created_at", "email", "first_name", "last_name", "role"}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// CreateUser inserts usr and its profile in one transaction.
func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, profile *user.StudentProfile) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, storeErr(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO users (id, role, email, password_hash, first_name, last_name, created_at)
		VALUES (:id, :role, :email, :password_hash, :first_name, :last_name, :created_at)`
	if _, err := tx.NamedExecContext(ctx, q, usr); err != nil {
		return user.User{}, storeErr(err, "inserting user")
	}

	if profile != nil {
		p := *profile
		p.StudentID = usr.ID
		q = `INSERT INTO students_profile (student_id, parent_id, date_of_birth, enrollment_year)
			VALUES (:student_id, :parent_id, :date_of_birth, :enrollment_year)`
		if _, err := tx.NamedExecContext(ctx, q, p); err != nil {
			return user.User{}, storeErr(err, "inserting student profile")
		}
	}

	if err := tx.Commit(); err != nil {
		return user.User{}, storeErr(err, "committing user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE `
	var arg string
	switch {
	case filter.ID != "":
		q += `id = $1`
		arg = filter.ID
	case filter.Email != "":
		q += `email = $1`
		arg = filter.Email
	default:
		return user.User{}, core.ErrNotFound
	}

	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, q, arg); err != nil {
		return user.User{}, storeErr(err, "getting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var w where
	if filter.Role != "" {
		w.add("role = ?", filter.Role)
	}

	orderBy := make([]string, 0, len(ordering)+1)
	for _, ord := range core.CleanOrderings(ordering, userOrderingFields...) {
		orderBy = append(orderBy, ord.String())
	}
	orderBy = append(orderBy, "id ASC")

	q, args, err := w.build(repo.db, `SELECT `+userColumns+` FROM users`, "ORDER BY "+strings.Join(orderBy, ", "))
	if err != nil {
		return nil, errors.Wrap(err, "building users query")
	}

	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, storeErr(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) CountUsers(ctx context.Context, role core.Role) (int, error) {
	var w where
	if role != "" {
		w.add("role = ?", role)
	}
	q, args, err := w.build(repo.db, `SELECT COUNT(*) FROM users`, "")
	if err != nil {
		return 0, errors.Wrap(err, "building users count")
	}

	var n int
	if err := repo.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, storeErr(err, "counting users")
	}
	return n, nil
}

// UpdateUser saves the mutable fields of usr: names and password.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET first_name = $1, last_name = $2, password_hash = $3 WHERE id = $4
		RETURNING ` + userColumns

	var updated user.User
	if err := repo.db.GetContext(ctx, &updated, q, usr.FirstName, usr.LastName, usr.PasswordHash, usr.ID); err != nil {
		return user.User{}, storeErr(err, "updating user")
	}
	return updated, nil
}

func (repo *userRepository) GetProfile(ctx context.Context, studentID string) (user.StudentProfile, error) {
	q := `SELECT ` + profileColumns + ` FROM students_profile p WHERE p.student_id = $1`

	var profile user.StudentProfile
	if err := repo.db.GetContext(ctx, &profile, q, studentID); err != nil {
		return user.StudentProfile{}, storeErr(err, "getting student profile")
	}
	return profile, nil
}

func (repo *userRepository) QueryProfiles(ctx context.Context, filter user.ProfileFilter) ([]user.Child, error) {
	children := make([]user.Child, 0)
	if emptyIn(filter.StudentIDs) {
		return children, nil
	}

	var w where
	if filter.ParentID != "" {
		w.add("p.parent_id = ?", filter.ParentID)
	}
	if filter.StudentIDs != nil {
		w.add("p.student_id IN (?)", filter.StudentIDs)
	}

	base := `SELECT ` + profileColumns + `,
			u.id AS "user.id", u.first_name AS "user.first_name", u.last_name AS "user.last_name",
			u.email AS "user.email"
		FROM students_profile p
		JOIN users u ON u.id = p.student_id`
	q, args, err := w.build(repo.db, base, "ORDER BY u.last_name, u.first_name, u.id")
	if err != nil {
		return nil, errors.Wrap(err, "building profiles query")
	}

	if err := repo.db.SelectContext(ctx, &children, q, args...); err != nil {
		return nil, storeErr(err, "querying student profiles")
	}
	return children, nil
}

func (repo *userRepository) UpdateProfile(ctx context.Context, profile user.StudentProfile) (user.StudentProfile, error) {
	q := `UPDATE students_profile p SET parent_id = $1, date_of_birth = $2, enrollment_year = $3
		WHERE p.student_id = $4
		RETURNING ` + profileColumns

	var updated user.StudentProfile
	err := repo.db.GetContext(ctx, &updated, q, profile.ParentID, profile.DateOfBirth, profile.EnrollmentYear, profile.StudentID)
	if err != nil {
		return user.StudentProfile{}, storeErr(err, "updating student profile")
	}
	return updated, nil
}
