package attendance

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/school"
)

type (
	Repository interface {
		// Upsert saves recs in one statement, overwriting the status of any existing
		// (class_id, student_id, date) row.
		Upsert(ctx context.Context, recs []Record) ([]Record, error)
		// Query returns matching rows, newest first.
		Query(ctx context.Context, filter Filter) ([]Detail, error)
	}

	Service interface {
		BulkSave(ctx context.Context, p core.Principal, data BulkAttendance) ([]Record, error)
		Query(ctx context.Context, p core.Principal, filter Filter) ([]Detail, error)
		StudentHistory(ctx context.Context, p core.Principal, studentID string) (History, error)
	}

	service struct {
		repo   Repository
		access school.Access
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, access school.Access) Service {
	return &service{repo: repo, access: access}
}

// BulkSave checks ownership, then upserts every record at once.
func (svc *service) BulkSave(ctx context.Context, p core.Principal, data BulkAttendance) ([]Record, error) {
	if err := svc.access.AuthorizeClass(ctx, p, data.ClassID); err != nil {
		return nil, err
	}

	recs := data.records()
	for i := range recs {
		recs[i].ID = uuid.New().String()
	}
	return svc.repo.Upsert(ctx, recs)
}

func (svc *service) Query(ctx context.Context, p core.Principal, filter Filter) ([]Detail, error) {
	ids, err := svc.access.VisibleClassIDs(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "finding visible classes")
	}
	filter.ClassIDs = ids
	return svc.repo.Query(ctx, filter)
}

func (svc *service) StudentHistory(ctx context.Context, p core.Principal, studentID string) (History, error) {
	if err := svc.access.AuthorizeStudent(ctx, p, studentID); err != nil {
		return History{}, err
	}
	if _, err := uuid.Parse(studentID); err != nil {
		return History{Records: []Detail{}, Summary: Summarize(nil)}, nil
	}

	recs, err := svc.repo.Query(ctx, Filter{StudentID: studentID})
	if err != nil {
		return History{}, err
	}
	return History{Records: recs, Summary: Summarize(recs)}, nil
}
