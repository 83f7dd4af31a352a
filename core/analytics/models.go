package analytics

import (
	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/attendance"
	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
)

type (
	AdminMetrics struct {
		TotalStudents        int `json:"totalStudents"`
		TotalTeachers        int `json:"totalTeachers"`
		TotalClasses         int `json:"totalClasses"`
		TotalEnrollments     int `json:"totalEnrollments"`
		GlobalAttendanceRate int `json:"globalAttendanceRate"`
		AverageGPA           int `json:"averageGPA"`
		AtRiskStudents       int `json:"atRiskStudents"`
	}

	AdminDashboard struct {
		Role    core.Role    `json:"role"`
		Metrics AdminMetrics `json:"metrics"`
	}

	TeacherMetrics struct {
		ClassAverageGPA     int `json:"classAverageGPA"`
		TotalAtRisk         int `json:"totalAtRisk"`
		DailyAttendanceRate int `json:"dailyAttendanceRate"`
		TotalClasses        int `json:"totalClasses"`
		TotalStudents       int `json:"totalStudents"`
	}

	TeacherDashboard struct {
		Role    core.Role            `json:"role"`
		Metrics TeacherMetrics       `json:"metrics"`
		Classes []school.ClassDetail `json:"classes"`
	}

	StudentMetrics struct {
		AttendanceRate int `json:"attendanceRate"`
		GPA            int `json:"gpa"`
		TotalClasses   int `json:"totalClasses"`
	}

	StudentDashboard struct {
		Role        core.Role                 `json:"role"`
		Metrics     StudentMetrics            `json:"metrics"`
		Attendance  []attendance.Detail       `json:"attendance"`
		Grades      []grade.Detail            `json:"grades"`
		Enrollments []school.EnrollmentDetail `json:"enrollments"`
	}

	ChildMetrics struct {
		AttendanceRate int `json:"attendanceRate"`
		GPA            int `json:"gpa"`
	}

	ChildReport struct {
		Student          user.Person         `json:"student"`
		Metrics          ChildMetrics        `json:"metrics"`
		RecentAttendance []attendance.Detail `json:"recentAttendance"`
		Grades           []grade.Detail      `json:"grades"`
	}

	ParentDashboard struct {
		Role     core.Role     `json:"role"`
		Children []ChildReport `json:"children"`
		Message  string        `json:"message,omitempty"`
	}
)
