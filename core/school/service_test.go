package school_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/testutil"
)

func TestAuthorizeClass(t *testing.T) {
	store := testutil.NewStore(t)
	svc := school.NewService(store.School, store.Users)

	admin := testutil.CreateUser(t, store.Users, core.RoleAdmin, "Ada", "Admin", "admin@eduos.test", "")
	owner := testutil.CreateUser(t, store.Users, core.RoleTeacher, "Tom", "Teach", "tom@eduos.test", "")
	other := testutil.CreateUser(t, store.Users, core.RoleTeacher, "Uma", "Teach", "uma@eduos.test", "")
	student := testutil.CreateUser(t, store.Users, core.RoleStudent, "Sam", "Stud", "sam@eduos.test", "")
	subj := testutil.CreateSubject(t, store.School, "MATH101", "Mathematics")
	cls := testutil.CreateClass(t, store.School, subj.ID, owner.ID)

	tests := []struct {
		name    string
		p       core.Principal
		classID string
		wantErr string
	}{
		{name: "admin", p: admin.Principal(), classID: cls.ID},
		{name: "admin, unknown class", p: admin.Principal(), classID: uuid.New().String()},
		{name: "owner", p: owner.Principal(), classID: cls.ID},
		{
			name:    "other teacher",
			p:       other.Principal(),
			classID: cls.ID,
			wantErr: "Access denied. You are not assigned to this class.",
		},
		{
			name:    "missing class",
			p:       owner.Principal(),
			classID: uuid.New().String(),
			wantErr: "Access denied. You are not assigned to this class.",
		},
		{
			name:    "invalid class id",
			p:       owner.Principal(),
			classID: "nope",
			wantErr: "Access denied. You are not assigned to this class.",
		},
		{
			name:    "student",
			p:       student.Principal(),
			classID: cls.ID,
			wantErr: "Access denied. This resource requires one of: admin, teacher",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AuthorizeClass(context.Background(), tt.p, tt.classID)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var authzErr *core.AuthorizationError
			if assert.ErrorAs(t, err, &authzErr) {
				assert.Equal(t, tt.wantErr, err.Error())
			}
		})
	}
}

func TestAuthorizeStudent(t *testing.T) {
	store := testutil.NewStore(t)
	svc := school.NewService(store.School, store.Users)

	teacher := testutil.CreateUser(t, store.Users, core.RoleTeacher, "Tom", "Teach", "tom@eduos.test", "")
	student := testutil.CreateUser(t, store.Users, core.RoleStudent, "Sam", "Stud", "sam@eduos.test", "")
	sibling := testutil.CreateUser(t, store.Users, core.RoleStudent, "Sue", "Stud", "sue@eduos.test", "")
	parent := testutil.CreateUser(t, store.Users, core.RoleParent, "Pam", "Stud", "pam@eduos.test", "")
	stranger := testutil.CreateUser(t, store.Users, core.RoleParent, "Pat", "Else", "pat@eduos.test", "")
	testutil.LinkParent(t, store.Users, student.ID, parent.ID)

	tests := []struct {
		name      string
		p         core.Principal
		studentID string
		wantErr   string
	}{
		{name: "teacher", p: teacher.Principal(), studentID: student.ID},
		{name: "self", p: student.Principal(), studentID: student.ID},
		{
			name:      "other student",
			p:         sibling.Principal(),
			studentID: student.ID,
			wantErr:   "Access denied. You can only view your own attendance.",
		},
		{name: "linked parent", p: parent.Principal(), studentID: student.ID},
		{
			name:      "unlinked parent",
			p:         stranger.Principal(),
			studentID: student.ID,
			wantErr:   "Access denied. This student is not linked to your account.",
		},
		{
			name:      "parent, unlinked child",
			p:         parent.Principal(),
			studentID: sibling.ID,
			wantErr:   "Access denied. This student is not linked to your account.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AuthorizeStudent(context.Background(), tt.p, tt.studentID)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestService_CreateClass(t *testing.T) {
	store := testutil.NewStore(t)
	svc := school.NewService(store.School, store.Users)

	teacher := testutil.CreateUser(t, store.Users, core.RoleTeacher, "Tom", "Teach", "tom@eduos.test", "")
	parent := testutil.CreateUser(t, store.Users, core.RoleParent, "Pam", "Par", "pam@eduos.test", "")
	subj := testutil.CreateSubject(t, store.School, "MATH101", "Mathematics")

	t.Run("teacher", func(t *testing.T) {
		cls, err := svc.CreateClass(context.Background(), school.NewClass{
			SubjectID: subj.ID, TeacherID: teacher.ID, Semester: "Fall", AcademicYear: 2024,
		})
		require.NoError(t, err)
		assert.Equal(t, "Mathematics", cls.Subject.Name)
		assert.Equal(t, "Tom", cls.Teacher.FirstName)
	})

	t.Run("not a teacher", func(t *testing.T) {
		_, err := svc.CreateClass(context.Background(), school.NewClass{
			SubjectID: subj.ID, TeacherID: parent.ID, Semester: "Fall", AcademicYear: 2024,
		})
		assert.Equal(t, school.ErrNotATeacher, err)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := svc.CreateClass(context.Background(), school.NewClass{
			SubjectID: uuid.New().String(), TeacherID: teacher.ID, Semester: "Fall", AcademicYear: 2024,
		})
		var storeErr *core.StoreError
		if assert.ErrorAs(t, err, &storeErr) {
			assert.Equal(t, core.StoreForeignKeyViolation, storeErr.Kind)
		}
	})
}

func TestService_Enrollments(t *testing.T) {
	store := testutil.NewStore(t)
	svc := school.NewService(store.School, store.Users)
	ctx := context.Background()

	admin := testutil.CreateUser(t, store.Users, core.RoleAdmin, "Ada", "Admin", "admin@eduos.test", "")
	tom := testutil.CreateUser(t, store.Users, core.RoleTeacher, "Tom", "Teach", "tom@eduos.test", "")
	uma := testutil.CreateUser(t, store.Users, core.RoleTeacher, "Uma", "Teach", "uma@eduos.test", "")
	idle := testutil.CreateUser(t, store.Users, core.RoleTeacher, "Ian", "Idle", "ian@eduos.test", "")
	student := testutil.CreateUser(t, store.Users, core.RoleStudent, "Sam", "Stud", "sam@eduos.test", "")
	subj := testutil.CreateSubject(t, store.School, "MATH101", "Mathematics")
	tomClass := testutil.CreateClass(t, store.School, subj.ID, tom.ID)
	umaClass := testutil.CreateClass(t, store.School, subj.ID, uma.ID)

	_, err := svc.CreateEnrollment(ctx, school.NewEnrollment{StudentID: student.ID, ClassID: tomClass.ID, Status: school.EnrollmentActive})
	require.NoError(t, err)
	_, err = svc.CreateEnrollment(ctx, school.NewEnrollment{StudentID: student.ID, ClassID: umaClass.ID, Status: school.EnrollmentActive})
	require.NoError(t, err)

	t.Run("duplicate", func(t *testing.T) {
		_, err := svc.CreateEnrollment(ctx, school.NewEnrollment{StudentID: student.ID, ClassID: tomClass.ID, Status: school.EnrollmentActive})
		var storeErr *core.StoreError
		if assert.ErrorAs(t, err, &storeErr) {
			assert.Equal(t, "A record with this information already exists.", storeErr.UserMessage())
		}
	})

	t.Run("non student", func(t *testing.T) {
		_, err := svc.CreateEnrollment(ctx, school.NewEnrollment{StudentID: tom.ID, ClassID: tomClass.ID, Status: school.EnrollmentActive})
		var storeErr *core.StoreError
		if assert.ErrorAs(t, err, &storeErr) {
			assert.Equal(t, "Referenced record not found. Please check your inputs.", storeErr.UserMessage())
		}
	})

	t.Run("scoping", func(t *testing.T) {
		all, err := svc.QueryEnrollments(ctx, admin.Principal(), school.EnrollmentFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		own, err := svc.QueryEnrollments(ctx, tom.Principal(), school.EnrollmentFilter{})
		require.NoError(t, err)
		if assert.Len(t, own, 1) {
			assert.Equal(t, tomClass.ID, own[0].ClassID)
			assert.Equal(t, "Sam", own[0].Student.FirstName)
		}

		none, err := svc.QueryEnrollments(ctx, idle.Principal(), school.EnrollmentFilter{})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("roster", func(t *testing.T) {
		roster, err := svc.QueryRoster(ctx, tom.Principal(), tomClass.ID)
		require.NoError(t, err)
		if assert.Len(t, roster, 1) {
			assert.Equal(t, student.ID, roster[0].StudentID)
			assert.Equal(t, student.Email, roster[0].Student.User.Email)
		}

		_, err = svc.QueryRoster(ctx, uma.Principal(), tomClass.ID)
		assert.EqualError(t, err, "Access denied. You are not assigned to this class.")
	})
}
