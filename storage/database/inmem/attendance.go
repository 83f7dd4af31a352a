package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/eduos/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// Upsert writes every record or none of them.
func (repo *attendanceRepository) Upsert(_ context.Context, recs []attendance.Record) ([]attendance.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, r := range recs {
		if err := repo.db.checkStudentAndClass(r.StudentID, r.ClassID); err != nil {
			return nil, err
		}
	}

	saved := make([]attendance.Record, 0, len(recs))
	for _, r := range recs {
		if existing := repo.find(r.ClassID, r.StudentID, r.Date); existing != nil {
			existing.Status = r.Status
			saved = append(saved, *existing)
			continue
		}
		rec := r
		repo.db.attendance = append(repo.db.attendance, &rec)
		saved = append(saved, rec)
	}
	return saved, nil
}

func (repo *attendanceRepository) find(classID, studentID, date string) *attendance.Record {
	for _, r := range repo.db.attendance {
		if r.ClassID == classID && r.StudentID == studentID && r.Date == date {
			return r
		}
	}
	return nil
}

func (repo *attendanceRepository) Query(_ context.Context, filter attendance.Filter) ([]attendance.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := make([]attendance.Detail, 0)
	for _, r := range repo.db.attendance {
		switch {
		case filter.ClassID != "" && r.ClassID != filter.ClassID,
			filter.Date != "" && r.Date != filter.Date,
			filter.StudentID != "" && r.StudentID != filter.StudentID,
			!restrict(filter.ClassIDs, r.ClassID):
			continue
		}
		student := repo.db.person(r.StudentID)
		recs = append(recs, attendance.Detail{
			Record:           *r,
			StudentFirstName: student.FirstName,
			StudentLastName:  student.LastName,
			Class:            repo.db.classSummary(r.ClassID),
		})
	}
	// newest first; ISO dates sort lexically
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date > recs[j].Date })
	return recs, nil
}
