package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/attendance"
	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/stats"
	"github.com/trezcool/eduos/core/user"
)

const (
	recentAttendanceLimit = 10
	noChildrenMessage     = "No students linked to your account."
)

var (
	nowFunc = time.Now // mockable

	errInvalidRole = core.NewAuthorizationError("Invalid role.")
)

type (
	// Dashboard builds the aggregate view of one role.
	// The reads it issues are independent and are not wrapped in a transaction.
	Dashboard interface {
		Load(ctx context.Context, p core.Principal) (interface{}, error)
	}

	// Repositories are the read sources of the dashboards.
	Repositories struct {
		Users      user.Repository
		School     school.Repository
		Attendance attendance.Repository
		Grades     grade.Repository
	}

	Service interface {
		Dashboard(ctx context.Context, p core.Principal) (interface{}, error)
	}

	service struct {
		dashboards map[core.Role]Dashboard
	}
)

var _ Service = (*service)(nil)

func NewService(repos Repositories) Service {
	return &service{
		dashboards: map[core.Role]Dashboard{
			core.RoleAdmin:   adminDashboard{repos},
			core.RoleTeacher: teacherDashboard{repos},
			core.RoleStudent: studentDashboard{repos},
			core.RoleParent:  parentDashboard{repos},
		},
	}
}

func (svc *service) Dashboard(ctx context.Context, p core.Principal) (interface{}, error) {
	d, ok := svc.dashboards[p.Role]
	if !ok {
		return nil, errInvalidRole
	}
	return d.Load(ctx, p)
}

// tally groups attendance and grade rows per student.
func tally(recs []attendance.Detail, grades []grade.Detail) stats.Tallies {
	ts := make(stats.Tallies)
	for _, r := range recs {
		ts.Get(r.StudentID).AddSession(r.Attended())
	}
	for _, g := range grades {
		ts.Get(g.StudentID).AddGrade(g.Score, g.MaxScore)
	}
	return ts
}

type adminDashboard struct {
	Repositories
}

func (d adminDashboard) Load(ctx context.Context, _ core.Principal) (interface{}, error) {
	var (
		m   AdminMetrics
		err error
	)
	if m.TotalStudents, err = d.Users.CountUsers(ctx, core.RoleStudent); err != nil {
		return nil, errors.Wrap(err, "counting students")
	}
	if m.TotalTeachers, err = d.Users.CountUsers(ctx, core.RoleTeacher); err != nil {
		return nil, errors.Wrap(err, "counting teachers")
	}
	if m.TotalClasses, err = d.School.CountClasses(ctx); err != nil {
		return nil, errors.Wrap(err, "counting classes")
	}
	if m.TotalEnrollments, err = d.School.CountEnrollments(ctx, school.EnrollmentActive); err != nil {
		return nil, errors.Wrap(err, "counting enrollments")
	}

	recs, err := d.Attendance.Query(ctx, attendance.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	grades, err := d.Grades.Query(ctx, grade.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	m.GlobalAttendanceRate = attendance.Rate(recs)
	m.AverageGPA = grade.Average(grades)

	profiles, err := d.Users.QueryProfiles(ctx, user.ProfileFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying student profiles")
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.StudentID)
	}
	m.AtRiskStudents = tally(recs, grades).CountAtRisk(ids)

	return AdminDashboard{Role: core.RoleAdmin, Metrics: m}, nil
}

type teacherDashboard struct {
	Repositories
}

func (d teacherDashboard) Load(ctx context.Context, p core.Principal) (interface{}, error) {
	classes, err := d.School.QueryClasses(ctx, school.ClassFilter{TeacherID: p.UserID})
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classIDs := make([]string, 0, len(classes))
	for _, cls := range classes {
		classIDs = append(classIDs, cls.ID)
	}

	recs, err := d.Attendance.Query(ctx, attendance.Filter{ClassIDs: classIDs})
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	grades, err := d.Grades.Query(ctx, grade.Filter{ClassIDs: classIDs})
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	enrollments, err := d.School.QueryEnrollments(ctx, school.EnrollmentFilter{
		ClassIDs: classIDs,
		Status:   school.EnrollmentActive,
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}

	// server-local calendar day, compared as a string
	today := nowFunc().Format("2006-01-02")
	todayRecs := make([]attendance.Detail, 0)
	for _, r := range recs {
		if r.Date == today {
			todayRecs = append(todayRecs, r)
		}
	}

	studentIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, e := range enrollments {
		if !seen[e.StudentID] {
			seen[e.StudentID] = true
			studentIDs = append(studentIDs, e.StudentID)
		}
	}

	return TeacherDashboard{
		Role: core.RoleTeacher,
		Metrics: TeacherMetrics{
			ClassAverageGPA:     grade.Average(grades),
			TotalAtRisk:         tally(recs, grades).CountAtRisk(studentIDs),
			DailyAttendanceRate: attendance.Rate(todayRecs),
			TotalClasses:        len(classes),
			TotalStudents:       len(studentIDs),
		},
		Classes: classes,
	}, nil
}

type studentDashboard struct {
	Repositories
}

func (d studentDashboard) Load(ctx context.Context, p core.Principal) (interface{}, error) {
	recs, err := d.Attendance.Query(ctx, attendance.Filter{StudentID: p.UserID})
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	grades, err := d.Grades.Query(ctx, grade.Filter{StudentID: p.UserID})
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	enrollments, err := d.School.QueryEnrollments(ctx, school.EnrollmentFilter{
		StudentID: p.UserID,
		Status:    school.EnrollmentActive,
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}

	return StudentDashboard{
		Role: core.RoleStudent,
		Metrics: StudentMetrics{
			AttendanceRate: attendance.Rate(recs),
			GPA:            grade.Average(grades),
			TotalClasses:   len(enrollments),
		},
		Attendance:  recs,
		Grades:      grades,
		Enrollments: enrollments,
	}, nil
}

type parentDashboard struct {
	Repositories
}

func (d parentDashboard) Load(ctx context.Context, p core.Principal) (interface{}, error) {
	children, err := d.Users.QueryProfiles(ctx, user.ProfileFilter{ParentID: p.UserID})
	if err != nil {
		return nil, errors.Wrap(err, "querying children")
	}
	dash := ParentDashboard{Role: core.RoleParent, Children: make([]ChildReport, 0, len(children))}
	if len(children) == 0 {
		dash.Message = noChildrenMessage
		return dash, nil
	}

	for _, child := range children {
		recs, err := d.Attendance.Query(ctx, attendance.Filter{StudentID: child.StudentID})
		if err != nil {
			return nil, errors.Wrap(err, "querying attendance")
		}
		grades, err := d.Grades.Query(ctx, grade.Filter{StudentID: child.StudentID})
		if err != nil {
			return nil, errors.Wrap(err, "querying grades")
		}

		// the rate covers every record, only the display is trimmed
		recent := recs
		if len(recent) > recentAttendanceLimit {
			recent = recent[:recentAttendanceLimit]
		}
		dash.Children = append(dash.Children, ChildReport{
			Student: child.User,
			Metrics: ChildMetrics{
				AttendanceRate: attendance.Rate(recs),
				GPA:            grade.Average(grades),
			},
			RecentAttendance: recent,
			Grades:           grades,
		})
	}
	return dash, nil
}
