package grade

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
)

type (
	Repository interface {
		// Insert saves grades in one statement. Duplicates are legitimate.
		Insert(ctx context.Context, grades []Grade) ([]Grade, error)
		// Query returns matching rows ordered by assessment type.
		Query(ctx context.Context, filter Filter) ([]Detail, error)
	}

	Service interface {
		BulkInsert(ctx context.Context, p core.Principal, data BulkGrades) ([]Grade, error)
		Query(ctx context.Context, p core.Principal, filter Filter) ([]Detail, error)
		ClassGradebook(ctx context.Context, p core.Principal, classID string) (Gradebook, error)
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		access  school.Access
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, access school.Access) Service {
	return &service{repo: repo, usrRepo: usrRepo, access: access}
}

// BulkInsert checks ownership and scores before writing anything.
func (svc *service) BulkInsert(ctx context.Context, p core.Principal, data BulkGrades) ([]Grade, error) {
	if err := svc.access.AuthorizeClass(ctx, p, data.ClassID); err != nil {
		return nil, err
	}
	if err := data.checkScores(); err != nil {
		return nil, err
	}

	grades := data.grades()
	for i := range grades {
		grades[i].ID = uuid.New().String()
	}
	return svc.repo.Insert(ctx, grades)
}

// Query scopes the filter to what p may see: teachers their classes,
// students themselves and parents their children.
func (svc *service) Query(ctx context.Context, p core.Principal, filter Filter) ([]Detail, error) {
	switch p.Role {
	case core.RoleTeacher:
		ids, err := svc.access.VisibleClassIDs(ctx, p)
		if err != nil {
			return nil, errors.Wrap(err, "finding visible classes")
		}
		filter.ClassIDs = ids
	case core.RoleStudent:
		filter.StudentIDs = []string{p.UserID}
	case core.RoleParent:
		children, err := svc.usrRepo.QueryProfiles(ctx, user.ProfileFilter{ParentID: p.UserID})
		if err != nil {
			return nil, errors.Wrap(err, "finding children")
		}
		filter.StudentIDs = make([]string, 0, len(children))
		for _, c := range children {
			filter.StudentIDs = append(filter.StudentIDs, c.StudentID)
		}
	}
	return svc.repo.Query(ctx, filter)
}

func (svc *service) ClassGradebook(ctx context.Context, p core.Principal, classID string) (Gradebook, error) {
	if err := svc.access.AuthorizeClass(ctx, p, classID); err != nil {
		return Gradebook{}, err
	}
	if _, err := uuid.Parse(classID); err != nil {
		return Gradebook{Grades: []Detail{}, Summary: Summarize(nil)}, nil
	}

	grades, err := svc.repo.Query(ctx, Filter{ClassID: classID})
	if err != nil {
		return Gradebook{}, err
	}
	return Gradebook{Grades: grades, Summary: Summarize(grades)}, nil
}
