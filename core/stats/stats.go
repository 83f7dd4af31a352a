// Package stats holds the percentage formulas shared by every dashboard and summary.
package stats

import "math"

const (
	MinSafeAttendanceRate = 75.0
	MinSafeGradeAverage   = 50.0
)

// AttendanceRate is the share of attended sessions, in percent.
// No sessions means no evidence of absence: the rate is 100.
func AttendanceRate(attended, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(attended) / float64(total) * 100
}

// Percentage of a single score. maxScore is always >= 1.
func Percentage(score, maxScore float64) float64 {
	return score / maxScore * 100
}

// MeanPercentage is the arithmetic mean of per-row percentages; 0 when there are none.
func MeanPercentage(percentages []float64) float64 {
	if len(percentages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range percentages {
		sum += p
	}
	return sum / float64(len(percentages))
}

// IsAtRisk flags a student whose attendance rate is below 75 or whose average grade is below 50.
func IsAtRisk(rate, average float64) bool {
	return rate < MinSafeAttendanceRate || average < MinSafeGradeAverage
}

// Round rounds half up to the nearest integer.
func Round(f float64) int {
	return int(math.Floor(f + 0.5))
}

// Tally accumulates one student's attendance and grade rows.
type Tally struct {
	Attended    int
	Sessions    int
	Percentages []float64
}

func (t *Tally) AddSession(attended bool) {
	t.Sessions++
	if attended {
		t.Attended++
	}
}

func (t *Tally) AddGrade(score, maxScore float64) {
	t.Percentages = append(t.Percentages, Percentage(score, maxScore))
}

func (t Tally) AttendanceRate() float64 {
	return AttendanceRate(t.Attended, t.Sessions)
}

func (t Tally) GradeAverage() float64 {
	return MeanPercentage(t.Percentages)
}

// AtRisk applies IsAtRisk to the unrounded values.
// A student without grades is not flagged on grades.
func (t Tally) AtRisk() bool {
	avg := 100.0
	if len(t.Percentages) > 0 {
		avg = t.GradeAverage()
	}
	return IsAtRisk(t.AttendanceRate(), avg)
}

// Tallies groups rows per student id.
type Tallies map[string]*Tally

func (ts Tallies) Get(studentID string) *Tally {
	t, ok := ts[studentID]
	if !ok {
		t = new(Tally)
		ts[studentID] = t
	}
	return t
}

// CountAtRisk counts the at-risk students among ids; students without any row are safe.
func (ts Tallies) CountAtRisk(ids []string) int {
	var n int
	for _, id := range ids {
		if t, ok := ts[id]; ok && t.AtRisk() {
			n++
		}
	}
	return n
}
