package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/eduos/core"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Role         core.Role `json:"role" db:"role"`
	Email        string    `json:"email" db:"email"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	cost := core.Conf.PasswordHashCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u User) Principal() core.Principal {
	return core.Principal{UserID: u.ID, Role: u.Role, Email: u.Email}
}

// Person is the public identity of a user, embedded in joined rows.
type Person struct {
	ID        string `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Email     string `json:"email" db:"email"`
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"password" validate:"required,min=6"`
	FirstName string    `json:"first_name" validate:"required,max=100"`
	LastName  string    `json:"last_name" validate:"required,max=100"`
	Role      core.Role `json:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.FirstName = core.CleanString(uu.FirstName)
	uu.LastName = core.CleanString(uu.LastName)
	return validate.Struct(uu)
}

type QueryFilter struct {
	Role core.Role `query:"role"`
}

// GetFilter selects a single user; the first non-empty field wins.
type GetFilter struct {
	ID    string
	Email string
}

// StudentProfile is the 1:1 extension of a student User.
type StudentProfile struct {
	StudentID      string  `json:"student_id" db:"student_id"`
	ParentID       *string `json:"parent_id" db:"parent_id"`
	DateOfBirth    *string `json:"date_of_birth" db:"date_of_birth"`
	EnrollmentYear int     `json:"enrollment_year" db:"enrollment_year"`
}

// Child is a StudentProfile joined to the student's identity.
type Child struct {
	StudentProfile
	User Person `json:"user" db:"user"`
}

// UpdateProfile links a student to a parent and fills in the profile details.
type UpdateProfile struct {
	ParentID       *string `json:"parent_id" validate:"omitempty,uuid"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty,isodate"`
	EnrollmentYear int     `json:"enrollment_year" validate:"omitempty,min=2000,max=2100"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	if up.ParentID != nil && *up.ParentID == "" {
		up.ParentID = nil
	}
	return validate.Struct(up)
}

type ProfileFilter struct {
	ParentID   string
	StudentIDs []string
}
