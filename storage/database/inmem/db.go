// Package inmemdb implements the repositories on top of process memory.
// It mirrors the constraints of the SQL schema so that services behave the same on both.
package inmemdb

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/attendance"
	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
)

type DB struct {
	mu sync.RWMutex

	users       map[string]*user.User
	profiles    map[string]*user.StudentProfile
	subjects    map[string]*school.Subject
	classes     map[string]*school.Class
	enrollments []*school.Enrollment
	attendance  []*attendance.Record
	grades      []grade.Grade
}

func Open() (*DB, error) {
	db := &DB{
		users:    make(map[string]*user.User),
		profiles: make(map[string]*user.StudentProfile),
		subjects: make(map[string]*school.Subject),
		classes:  make(map[string]*school.Class),
	}
	return db, nil
}

func uniqueViolation(format string, args ...interface{}) error {
	return core.NewStoreError(core.StoreUniqueViolation, errors.Errorf("duplicate key: "+format, args...))
}

func foreignKeyViolation(format string, args ...interface{}) error {
	return core.NewStoreError(core.StoreForeignKeyViolation, errors.Errorf("missing reference: "+format, args...))
}

// restrict reports whether v passes an optional IN (...) clause. A nil list does not restrict.
func restrict(list []string, v string) bool {
	if list == nil {
		return true
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// the helpers below expect db.mu to be held

func (db *DB) person(id string) user.Person {
	usr, ok := db.users[id]
	if !ok {
		return user.Person{ID: id}
	}
	return user.Person{ID: usr.ID, FirstName: usr.FirstName, LastName: usr.LastName, Email: usr.Email}
}

func (db *DB) classSummary(id string) school.ClassSummary {
	sum := school.ClassSummary{ID: id}
	cls, ok := db.classes[id]
	if !ok {
		return sum
	}
	sum.Semester = cls.Semester
	sum.AcademicYear = cls.AcademicYear
	if subj, ok := db.subjects[cls.SubjectID]; ok {
		sum.SubjectName = subj.Name
		sum.SubjectCode = subj.Code
	}
	return sum
}

func (db *DB) checkStudentAndClass(studentID, classID string) error {
	if _, ok := db.classes[classID]; !ok {
		return foreignKeyViolation("class %s", classID)
	}
	if _, ok := db.profiles[studentID]; !ok {
		return foreignKeyViolation("student %s", studentID)
	}
	return nil
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
