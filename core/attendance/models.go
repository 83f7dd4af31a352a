package attendance

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/stats"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

type Record struct {
	ID        string `json:"attendance_id" db:"attendance_id"`
	ClassID   string `json:"class_id" db:"class_id"`
	StudentID string `json:"student_id" db:"student_id"`
	Date      string `json:"date" db:"date"` // YYYY-MM-DD
	Status    string `json:"status" db:"status"`
}

// Attended reports whether the student was in class, even if late.
func (r Record) Attended() bool {
	return r.Status == StatusPresent || r.Status == StatusLate
}

// Detail is a Record joined to the student's name and the class.
type Detail struct {
	Record
	StudentFirstName string              `json:"student_first_name" db:"student_first_name"`
	StudentLastName  string              `json:"student_last_name" db:"student_last_name"`
	Class            school.ClassSummary `json:"class" db:"class"`
}

// BulkAttendance marks a whole class for one date.
type BulkAttendance struct {
	ClassID string  `json:"class_id" validate:"required,uuid"`
	Date    string  `json:"date" validate:"required,isodate"`
	Records []Entry `json:"records" validate:"required,dive"`
}

type Entry struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
}

func (ba *BulkAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(ba)
}

// records builds one Record per student; a student listed twice keeps the last status.
func (ba BulkAttendance) records() []Record {
	recs := make([]Record, 0, len(ba.Records))
	seen := make(map[string]int, len(ba.Records))
	for _, e := range ba.Records {
		if i, ok := seen[e.StudentID]; ok {
			recs[i].Status = e.Status
			continue
		}
		seen[e.StudentID] = len(recs)
		recs = append(recs, Record{
			ClassID:   ba.ClassID,
			StudentID: e.StudentID,
			Date:      ba.Date,
			Status:    e.Status,
		})
	}
	return recs
}

type Filter struct {
	ClassID   string   `query:"class_id" json:"class_id" validate:"omitempty,uuid"`
	Date      string   `query:"date" json:"date" validate:"omitempty,isodate"`
	StudentID string   `query:"-" json:"-"`
	ClassIDs  []string `query:"-" json:"-"` // restricts results to these classes when non-nil
}

func (f *Filter) Validate(validate *validator.Validate) error {
	return validate.Struct(f)
}

type Summary struct {
	Total          int `json:"total"`
	Present        int `json:"present"`
	Late           int `json:"late"`
	Absent         int `json:"absent"`
	AttendanceRate int `json:"attendanceRate"`
}

// Summarize counts rows per status and computes the attendance rate.
func Summarize(recs []Detail) Summary {
	var sum Summary
	for _, r := range recs {
		switch r.Status {
		case StatusPresent:
			sum.Present++
		case StatusLate:
			sum.Late++
		case StatusAbsent:
			sum.Absent++
		}
	}
	sum.Total = len(recs)
	sum.AttendanceRate = stats.Round(stats.AttendanceRate(sum.Present+sum.Late, sum.Total))
	return sum
}

// Rate is the rounded attendance rate of recs.
func Rate(recs []Detail) int {
	var attended int
	for _, r := range recs {
		if r.Attended() {
			attended++
		}
	}
	return stats.Round(stats.AttendanceRate(attended, len(recs)))
}

// History is a student's attendance with its summary.
type History struct {
	Records []Detail `json:"records"`
	Summary Summary  `json:"summary"`
}
