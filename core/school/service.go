package school

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/user"
)

var (
	ErrNotATeacher = core.NewValidationError(nil, core.FieldError{Field: "teacher_id", Error: "teacher_id must reference a teacher account"})

	errNotClassTeacher = core.NewAuthorizationError("Access denied. You are not assigned to this class.")
	errNotSelf         = core.NewAuthorizationError("Access denied. You can only view your own attendance.")
	errNotParentOf     = core.NewAuthorizationError("Access denied. This student is not linked to your account.")
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)

		CreateClass(ctx context.Context, cls Class) (ClassDetail, error)
		GetClass(ctx context.Context, id string) (Class, error)
		QueryClasses(ctx context.Context, filter ClassFilter) ([]ClassDetail, error)
		CountClasses(ctx context.Context) (int, error)

		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		QueryEnrollments(ctx context.Context, filter EnrollmentFilter) ([]EnrollmentDetail, error)
		CountEnrollments(ctx context.Context, status string) (int, error)
		QueryRoster(ctx context.Context, classID string) ([]RosterEntry, error)
	}

	Service interface {
		CreateSubject(ctx context.Context, ns NewSubject) (Subject, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)

		CreateClass(ctx context.Context, nc NewClass) (ClassDetail, error)
		QueryClasses(ctx context.Context, p core.Principal) ([]ClassDetail, error)
		QueryRoster(ctx context.Context, p core.Principal, classID string) ([]RosterEntry, error)

		CreateEnrollment(ctx context.Context, ne NewEnrollment) (Enrollment, error)
		QueryEnrollments(ctx context.Context, p core.Principal, filter EnrollmentFilter) ([]EnrollmentDetail, error)

		Access
	}

	// Access holds the per-resource ownership rules layered on top of the role gate.
	Access interface {
		// AuthorizeClass lets admins through and teachers only into the classes they teach.
		AuthorizeClass(ctx context.Context, p core.Principal, classID string) error
		// AuthorizeStudent lets admins and teachers through, students only to themselves
		// and parents only to the students linked to them.
		AuthorizeStudent(ctx context.Context, p core.Principal, studentID string) error
		// VisibleClassIDs returns the classes p may read rows of; nil means all of them.
		VisibleClassIDs(ctx context.Context, p core.Principal) ([]string, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository) Service {
	return &service{repo: repo, usrRepo: usrRepo}
}

func (svc *service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	return svc.repo.CreateSubject(ctx, Subject{
		ID:      uuid.New().String(),
		Code:    ns.Code,
		Name:    ns.Name,
		Credits: ns.Credits,
	})
}

func (svc *service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *service) CreateClass(ctx context.Context, nc NewClass) (ClassDetail, error) {
	teacher, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: nc.TeacherID})
	if err != nil {
		if core.IsNotFound(err) {
			return ClassDetail{}, ErrNotATeacher
		}
		return ClassDetail{}, errors.Wrap(err, "finding teacher")
	}
	if teacher.Role != core.RoleTeacher {
		return ClassDetail{}, ErrNotATeacher
	}

	return svc.repo.CreateClass(ctx, Class{
		ID:           uuid.New().String(),
		SubjectID:    nc.SubjectID,
		TeacherID:    nc.TeacherID,
		Semester:     nc.Semester,
		AcademicYear: nc.AcademicYear,
	})
}

func (svc *service) QueryClasses(ctx context.Context, p core.Principal) ([]ClassDetail, error) {
	var filter ClassFilter
	if p.IsTeacher() {
		filter.TeacherID = p.UserID
	}
	return svc.repo.QueryClasses(ctx, filter)
}

func (svc *service) QueryRoster(ctx context.Context, p core.Principal, classID string) ([]RosterEntry, error) {
	if err := svc.AuthorizeClass(ctx, p, classID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(classID); err != nil {
		return []RosterEntry{}, nil
	}
	return svc.repo.QueryRoster(ctx, classID)
}

func (svc *service) CreateEnrollment(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		ID:        uuid.New().String(),
		StudentID: ne.StudentID,
		ClassID:   ne.ClassID,
		Status:    ne.Status,
	})
}

func (svc *service) QueryEnrollments(ctx context.Context, p core.Principal, filter EnrollmentFilter) ([]EnrollmentDetail, error) {
	ids, err := svc.VisibleClassIDs(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "finding visible classes")
	}
	filter.ClassIDs = ids
	return svc.repo.QueryEnrollments(ctx, filter)
}

func (svc *service) AuthorizeClass(ctx context.Context, p core.Principal, classID string) error {
	switch p.Role {
	case core.RoleAdmin:
		return nil
	case core.RoleTeacher:
		if _, err := uuid.Parse(classID); err != nil {
			return errNotClassTeacher
		}
		cls, err := svc.repo.GetClass(ctx, classID)
		if err != nil {
			if core.IsNotFound(err) {
				return errNotClassTeacher
			}
			return errors.Wrap(err, "finding class")
		}
		if cls.TeacherID != p.UserID {
			return errNotClassTeacher
		}
		return nil
	}
	return core.NewRoleError(core.RoleAdmin, core.RoleTeacher)
}

func (svc *service) AuthorizeStudent(ctx context.Context, p core.Principal, studentID string) error {
	switch p.Role {
	case core.RoleAdmin, core.RoleTeacher:
		return nil
	case core.RoleStudent:
		if p.UserID != studentID {
			return errNotSelf
		}
		return nil
	case core.RoleParent:
		if _, err := uuid.Parse(studentID); err != nil {
			return errNotParentOf
		}
		profile, err := svc.usrRepo.GetProfile(ctx, studentID)
		if err != nil {
			if core.IsNotFound(err) {
				return errNotParentOf
			}
			return errors.Wrap(err, "finding student profile")
		}
		if profile.ParentID == nil || *profile.ParentID != p.UserID {
			return errNotParentOf
		}
		return nil
	}
	return core.NewRoleError(core.AllRoles...)
}

func (svc *service) VisibleClassIDs(ctx context.Context, p core.Principal) ([]string, error) {
	if !p.IsTeacher() {
		return nil, nil
	}
	classes, err := svc.repo.QueryClasses(ctx, ClassFilter{TeacherID: p.UserID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(classes))
	for _, cls := range classes {
		ids = append(ids, cls.ID)
	}
	return ids, nil
}
