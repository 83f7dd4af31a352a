package grade

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/stats"
)

type Grade struct {
	ID             string  `json:"grade_id" db:"grade_id"`
	ClassID        string  `json:"class_id" db:"class_id"`
	StudentID      string  `json:"student_id" db:"student_id"`
	AssessmentType string  `json:"assessment_type" db:"assessment_type"`
	Score          float64 `json:"score" db:"score"`
	MaxScore       float64 `json:"max_score" db:"max_score"`
}

func (g Grade) Percentage() float64 {
	return stats.Percentage(g.Score, g.MaxScore)
}

// Detail is a Grade joined to the student's identity and the class.
type Detail struct {
	Grade
	StudentFirstName string              `json:"student_first_name" db:"student_first_name"`
	StudentLastName  string              `json:"student_last_name" db:"student_last_name"`
	StudentEmail     string              `json:"student_email" db:"student_email"`
	Class            school.ClassSummary `json:"class" db:"class"`
}

// BulkGrades records one assessment for many students of a class.
type BulkGrades struct {
	ClassID        string  `json:"class_id" validate:"required,uuid"`
	AssessmentType string  `json:"assessment_type" validate:"required,max=50"`
	MaxScore       float64 `json:"max_score" validate:"required,gte=1,lte=9999.99,twodp"`
	Records        []Entry `json:"records" validate:"required,dive"`
}

type Entry struct {
	StudentID string   `json:"student_id" validate:"required,uuid"`
	Score     *float64 `json:"score" validate:"required,gte=0,lte=9999.99,twodp"`
}

func (bg *BulkGrades) Validate(validate *validator.Validate) error {
	bg.AssessmentType = core.CleanString(bg.AssessmentType)
	return validate.Struct(bg)
}

// checkScores rejects the whole batch when any score exceeds the max score.
func (bg BulkGrades) checkScores() error {
	var exceeding int
	for _, e := range bg.Records {
		if *e.Score > bg.MaxScore {
			exceeding++
		}
	}
	if exceeding > 0 {
		return core.NewValidationError(fmt.Errorf(
			"%d score(s) exceed max score of %s.", exceeding, strconv.FormatFloat(bg.MaxScore, 'f', -1, 64),
		))
	}
	return nil
}

func (bg BulkGrades) grades() []Grade {
	grades := make([]Grade, 0, len(bg.Records))
	for _, e := range bg.Records {
		grades = append(grades, Grade{
			ClassID:        bg.ClassID,
			StudentID:      e.StudentID,
			AssessmentType: bg.AssessmentType,
			Score:          *e.Score,
			MaxScore:       bg.MaxScore,
		})
	}
	return grades
}

type Filter struct {
	ClassID    string   `query:"class_id" json:"class_id" validate:"omitempty,uuid"`
	StudentID  string   `query:"student_id" json:"student_id" validate:"omitempty,uuid"`
	ClassIDs   []string `query:"-" json:"-"` // restricts results to these classes when non-nil
	StudentIDs []string `query:"-" json:"-"` // restricts results to these students when non-nil
}

func (f *Filter) Validate(validate *validator.Validate) error {
	return validate.Struct(f)
}

type Summary struct {
	TotalGrades       int      `json:"totalGrades"`
	AveragePercentage int      `json:"averagePercentage"`
	HighestPercentage int      `json:"highestPercentage"`
	LowestPercentage  int      `json:"lowestPercentage"`
	AssessmentTypes   []string `json:"assessmentTypes"`
}

// Summarize computes the gradebook statistics from per-row percentages.
func Summarize(grades []Detail) Summary {
	sum := Summary{TotalGrades: len(grades), AssessmentTypes: []string{}}
	if len(grades) == 0 {
		return sum
	}

	pcts := make([]float64, 0, len(grades))
	highest, lowest := grades[0].Percentage(), grades[0].Percentage()
	seen := make(map[string]bool)
	for _, g := range grades {
		pct := g.Percentage()
		pcts = append(pcts, pct)
		if pct > highest {
			highest = pct
		}
		if pct < lowest {
			lowest = pct
		}
		if !seen[g.AssessmentType] {
			seen[g.AssessmentType] = true
			sum.AssessmentTypes = append(sum.AssessmentTypes, g.AssessmentType)
		}
	}
	sum.AveragePercentage = stats.Round(stats.MeanPercentage(pcts))
	sum.HighestPercentage = stats.Round(highest)
	sum.LowestPercentage = stats.Round(lowest)
	return sum
}

// Average is the rounded mean of the per-row percentages of grades.
func Average(grades []Detail) int {
	pcts := make([]float64, 0, len(grades))
	for _, g := range grades {
		pcts = append(pcts, g.Percentage())
	}
	return stats.Round(stats.MeanPercentage(pcts))
}

// Gradebook is a class's grades with their summary.
type Gradebook struct {
	Grades  []Detail `json:"grades"`
	Summary Summary  `json:"summary"`
}
