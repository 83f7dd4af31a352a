package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/user"
)

// Enrollment statuses
const (
	EnrollmentActive  = "active"
	EnrollmentDropped = "dropped"
)

type Subject struct {
	ID      string `json:"subject_id" db:"subject_id"`
	Code    string `json:"subject_code" db:"subject_code"`
	Name    string `json:"subject_name" db:"subject_name"`
	Credits int    `json:"credits" db:"credits"`
}

type NewSubject struct {
	Code    string `json:"subject_code" validate:"required,max=20"`
	Name    string `json:"subject_name" validate:"required,max=100"`
	Credits int    `json:"credits" validate:"required,min=1,max=10"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Code = core.CleanString(ns.Code)
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type Class struct {
	ID           string `json:"class_id" db:"class_id"`
	SubjectID    string `json:"subject_id" db:"subject_id"`
	TeacherID    string `json:"teacher_id" db:"teacher_id"`
	Semester     string `json:"semester" db:"semester"`
	AcademicYear int    `json:"academic_year" db:"academic_year"`
}

// ClassDetail is a Class joined to its subject and teacher.
type ClassDetail struct {
	Class
	Subject Subject     `json:"subject" db:"subject"`
	Teacher user.Person `json:"teacher" db:"teacher"`
}

// ClassSummary is the short description of a class embedded in student-facing rows.
type ClassSummary struct {
	ID           string `json:"class_id" db:"class_id"`
	Semester     string `json:"semester" db:"semester"`
	AcademicYear int    `json:"academic_year" db:"academic_year"`
	SubjectName  string `json:"subject_name" db:"subject_name"`
	SubjectCode  string `json:"subject_code" db:"subject_code"`
}

type NewClass struct {
	SubjectID    string `json:"subject_id" validate:"required,uuid"`
	TeacherID    string `json:"teacher_id" validate:"required,uuid"`
	Semester     string `json:"semester" validate:"required,max=20"`
	AcademicYear int    `json:"academic_year" validate:"required,min=2000,max=2100"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Semester = core.CleanString(nc.Semester)
	return validate.Struct(nc)
}

type ClassFilter struct {
	TeacherID string
}

type Enrollment struct {
	ID        string `json:"enrollment_id" db:"enrollment_id"`
	StudentID string `json:"student_id" db:"student_id"`
	ClassID   string `json:"class_id" db:"class_id"`
	Status    string `json:"status" db:"status"`
}

// EnrollmentDetail is an Enrollment joined to the student's identity and the class.
type EnrollmentDetail struct {
	Enrollment
	Student user.Person  `json:"student" db:"student"`
	Class   ClassSummary `json:"class" db:"class"`
}

type NewEnrollment struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	ClassID   string `json:"class_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"omitempty,oneof=active dropped"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	if ne.Status == "" {
		ne.Status = EnrollmentActive
	}
	return validate.Struct(ne)
}

type EnrollmentFilter struct {
	ClassID   string   `query:"class_id" json:"class_id" validate:"omitempty,uuid"`
	StudentID string   `query:"student_id" json:"student_id" validate:"omitempty,uuid"`
	Status    string   `query:"-" json:"-"`
	ClassIDs  []string `query:"-" json:"-"` // restricts results to these classes when non-nil
}

func (f *EnrollmentFilter) Validate(validate *validator.Validate) error {
	return validate.Struct(f)
}

// RosterEntry is an active enrollment joined to the student's profile and identity.
type RosterEntry struct {
	EnrollmentID string        `json:"enrollment_id" db:"enrollment_id"`
	Status       string        `json:"status" db:"status"`
	StudentID    string        `json:"student_id" db:"student_id"`
	Student      RosterStudent `json:"student" db:"student"`
}

type RosterStudent struct {
	DateOfBirth    *string     `json:"date_of_birth" db:"date_of_birth"`
	EnrollmentYear int         `json:"enrollment_year" db:"enrollment_year"`
	User           user.Person `json:"user" db:"user"`
}
