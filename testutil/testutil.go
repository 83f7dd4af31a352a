// Package testutil builds fixtures on the in-memory store.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/attendance"
	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
	inmemdb "github.com/trezcool/eduos/storage/database/inmem"
)

// Store bundles the repositories of one fresh in-memory database.
type Store struct {
	Users      user.Repository
	School     school.Repository
	Attendance attendance.Repository
	Grades     grade.Repository
}

func NewStore(t *testing.T) Store {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return Store{
		Users:      inmemdb.NewUserRepository(db),
		School:     inmemdb.NewSchoolRepository(db),
		Attendance: inmemdb.NewAttendanceRepository(db),
		Grades:     inmemdb.NewGradeRepository(db),
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	role core.Role,
	firstName, lastName, email, pwd string,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Role:      role,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}

	var profile *user.StudentProfile
	if role == core.RoleStudent {
		profile = &user.StudentProfile{StudentID: usr.ID, EnrollmentYear: tstamp.Year()}
	}
	usr, err := repo.CreateUser(context.Background(), usr, profile)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// LinkParent sets parent as the parent of student.
func LinkParent(t *testing.T, repo user.Repository, studentID, parentID string) {
	ctx := context.Background()
	profile, err := repo.GetProfile(ctx, studentID)
	if err != nil {
		t.Fatalf("linkParent() failed: %v", err)
	}
	profile.ParentID = &parentID
	if _, err := repo.UpdateProfile(ctx, profile); err != nil {
		t.Fatalf("linkParent() failed: %v", err)
	}
}

func CreateSubject(t *testing.T, repo school.Repository, code, name string) school.Subject {
	subj, err := repo.CreateSubject(context.Background(), school.Subject{
		ID:      uuid.New().String(),
		Code:    code,
		Name:    name,
		Credits: 3,
	})
	if err != nil {
		t.Fatalf("createSubject() failed: %v", err)
	}
	return subj
}

func CreateClass(t *testing.T, repo school.Repository, subjectID, teacherID string, academicYear ...int) school.ClassDetail {
	year := 2024
	if len(academicYear) > 0 {
		year = academicYear[0]
	}
	cls, err := repo.CreateClass(context.Background(), school.Class{
		ID:           uuid.New().String(),
		SubjectID:    subjectID,
		TeacherID:    teacherID,
		Semester:     "Fall",
		AcademicYear: year,
	})
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return cls
}

func Enroll(t *testing.T, repo school.Repository, studentID, classID string, status ...string) school.Enrollment {
	st := school.EnrollmentActive
	if len(status) > 0 {
		st = status[0]
	}
	enr, err := repo.CreateEnrollment(context.Background(), school.Enrollment{
		ID:        uuid.New().String(),
		StudentID: studentID,
		ClassID:   classID,
		Status:    st,
	})
	if err != nil {
		t.Fatalf("enroll() failed: %v", err)
	}
	return enr
}

func MarkAttendance(t *testing.T, repo attendance.Repository, classID, studentID, date, status string) {
	_, err := repo.Upsert(context.Background(), []attendance.Record{{
		ID:        uuid.New().String(),
		ClassID:   classID,
		StudentID: studentID,
		Date:      date,
		Status:    status,
	}})
	if err != nil {
		t.Fatalf("markAttendance() failed: %v", err)
	}
}

func AddGrade(t *testing.T, repo grade.Repository, classID, studentID, assessment string, score, maxScore float64) {
	_, err := repo.Insert(context.Background(), []grade.Grade{{
		ID:             uuid.New().String(),
		ClassID:        classID,
		StudentID:      studentID,
		AssessmentType: assessment,
		Score:          score,
		MaxScore:       maxScore,
	}})
	if err != nil {
		t.Fatalf("addGrade() failed: %v", err)
	}
}
