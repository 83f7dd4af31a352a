package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/school"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSubject(_ context.Context, subj school.Subject) (school.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, s := range repo.db.subjects {
		if s.Code == subj.Code {
			return school.Subject{}, uniqueViolation("subjects.subject_code %s", subj.Code)
		}
	}
	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *schoolRepository) QuerySubjects(_ context.Context) ([]school.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := make([]school.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Name != subjects[j].Name {
			return subjects[i].Name < subjects[j].Name
		}
		return subjects[i].Code < subjects[j].Code
	})
	return subjects, nil
}

func (repo *schoolRepository) CreateClass(_ context.Context, cls school.Class) (school.ClassDetail, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[cls.SubjectID]; !ok {
		return school.ClassDetail{}, foreignKeyViolation("subject %s", cls.SubjectID)
	}
	if _, ok := repo.db.users[cls.TeacherID]; !ok {
		return school.ClassDetail{}, foreignKeyViolation("teacher %s", cls.TeacherID)
	}
	repo.db.classes[cls.ID] = &cls
	return repo.classDetail(cls), nil
}

func (repo *schoolRepository) classDetail(cls school.Class) school.ClassDetail {
	detail := school.ClassDetail{Class: cls, Teacher: repo.db.person(cls.TeacherID)}
	if subj, ok := repo.db.subjects[cls.SubjectID]; ok {
		detail.Subject = *subj
	}
	return detail
}

func (repo *schoolRepository) GetClass(_ context.Context, id string) (school.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return school.Class{}, core.ErrNotFound
}

func (repo *schoolRepository) QueryClasses(_ context.Context, filter school.ClassFilter) ([]school.ClassDetail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes := make([]school.ClassDetail, 0)
	for _, cls := range repo.db.classes {
		if filter.TeacherID == "" || cls.TeacherID == filter.TeacherID {
			classes = append(classes, repo.classDetail(*cls))
		}
	}
	sort.Slice(classes, func(i, j int) bool {
		a, b := classes[i], classes[j]
		if a.AcademicYear != b.AcademicYear {
			return a.AcademicYear > b.AcademicYear
		}
		if a.Semester != b.Semester {
			return a.Semester < b.Semester
		}
		if a.Subject.Code != b.Subject.Code {
			return a.Subject.Code < b.Subject.Code
		}
		return a.ID < b.ID
	})
	return classes, nil
}

func (repo *schoolRepository) CountClasses(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.classes), nil
}

func (repo *schoolRepository) CreateEnrollment(_ context.Context, enr school.Enrollment) (school.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.checkStudentAndClass(enr.StudentID, enr.ClassID); err != nil {
		return school.Enrollment{}, err
	}
	for _, e := range repo.db.enrollments {
		if e.StudentID == enr.StudentID && e.ClassID == enr.ClassID {
			return school.Enrollment{}, uniqueViolation("enrollments (student_id, class_id) (%s, %s)", enr.StudentID, enr.ClassID)
		}
	}
	repo.db.enrollments = append(repo.db.enrollments, &enr)
	return enr, nil
}

func (repo *schoolRepository) QueryEnrollments(_ context.Context, filter school.EnrollmentFilter) ([]school.EnrollmentDetail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrollments := make([]school.EnrollmentDetail, 0)
	for _, e := range repo.db.enrollments {
		switch {
		case filter.ClassID != "" && e.ClassID != filter.ClassID,
			filter.StudentID != "" && e.StudentID != filter.StudentID,
			filter.Status != "" && e.Status != filter.Status,
			!restrict(filter.ClassIDs, e.ClassID):
			continue
		}
		enrollments = append(enrollments, school.EnrollmentDetail{
			Enrollment: *e,
			Student:    repo.db.person(e.StudentID),
			Class:      repo.db.classSummary(e.ClassID),
		})
	}
	sort.SliceStable(enrollments, func(i, j int) bool {
		a, b := enrollments[i], enrollments[j]
		if a.Class.SubjectCode != b.Class.SubjectCode {
			return a.Class.SubjectCode < b.Class.SubjectCode
		}
		return a.Student.LastName < b.Student.LastName
	})
	return enrollments, nil
}

func (repo *schoolRepository) CountEnrollments(_ context.Context, status string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var n int
	for _, e := range repo.db.enrollments {
		if status == "" || e.Status == status {
			n++
		}
	}
	return n, nil
}

func (repo *schoolRepository) QueryRoster(_ context.Context, classID string) ([]school.RosterEntry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	roster := make([]school.RosterEntry, 0)
	for _, e := range repo.db.enrollments {
		if e.ClassID != classID || e.Status != school.EnrollmentActive {
			continue
		}
		entry := school.RosterEntry{
			EnrollmentID: e.ID,
			Status:       e.Status,
			StudentID:    e.StudentID,
			Student:      school.RosterStudent{User: repo.db.person(e.StudentID)},
		}
		if p, ok := repo.db.profiles[e.StudentID]; ok {
			entry.Student.DateOfBirth = p.DateOfBirth
			entry.Student.EnrollmentYear = p.EnrollmentYear
		}
		roster = append(roster, entry)
	}
	sort.SliceStable(roster, func(i, j int) bool {
		a, b := roster[i].Student.User, roster[j].Student.User
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	return roster, nil
}
