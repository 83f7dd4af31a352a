package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/eduos/core/grade"
)

type gradeRepository struct {
	db *DB
}

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) Insert(_ context.Context, grades []grade.Grade) ([]grade.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, g := range grades {
		if err := repo.db.checkStudentAndClass(g.StudentID, g.ClassID); err != nil {
			return nil, err
		}
	}
	repo.db.grades = append(repo.db.grades, grades...)
	return append(make([]grade.Grade, 0, len(grades)), grades...), nil
}

func (repo *gradeRepository) Query(_ context.Context, filter grade.Filter) ([]grade.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades := make([]grade.Detail, 0)
	for _, g := range repo.db.grades {
		switch {
		case filter.ClassID != "" && g.ClassID != filter.ClassID,
			filter.StudentID != "" && g.StudentID != filter.StudentID,
			!restrict(filter.ClassIDs, g.ClassID),
			!restrict(filter.StudentIDs, g.StudentID):
			continue
		}
		student := repo.db.person(g.StudentID)
		grades = append(grades, grade.Detail{
			Grade:            g,
			StudentFirstName: student.FirstName,
			StudentLastName:  student.LastName,
			StudentEmail:     student.Email,
			Class:            repo.db.classSummary(g.ClassID),
		})
	}
	sort.SliceStable(grades, func(i, j int) bool { return grades[i].AssessmentType < grades[j].AssessmentType })
	return grades, nil
}
