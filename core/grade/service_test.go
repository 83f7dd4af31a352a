package grade_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
	"github.com/trezcool/eduos/testutil"
)

type fixture struct {
	svc                grade.Service
	store              testutil.Store
	owner, other       user.User
	alice, bob, parent user.User
	class              school.ClassDetail
}

func newFixture(t *testing.T) fixture {
	store := testutil.NewStore(t)
	f := fixture{store: store}
	f.owner = testutil.CreateUser(t, store.Users, core.RoleTeacher, "Tom", "Teach", "tom@eduos.test", "")
	f.other = testutil.CreateUser(t, store.Users, core.RoleTeacher, "Uma", "Teach", "uma@eduos.test", "")
	f.alice = testutil.CreateUser(t, store.Users, core.RoleStudent, "Alice", "Adams", "alice@eduos.test", "")
	f.bob = testutil.CreateUser(t, store.Users, core.RoleStudent, "Bob", "Brown", "bob@eduos.test", "")
	f.parent = testutil.CreateUser(t, store.Users, core.RoleParent, "Pam", "Adams", "pam@eduos.test", "")
	testutil.LinkParent(t, store.Users, f.alice.ID, f.parent.ID)
	subj := testutil.CreateSubject(t, store.School, "MATH101", "Mathematics")
	f.class = testutil.CreateClass(t, store.School, subj.ID, f.owner.ID)

	access := school.NewService(store.School, store.Users)
	f.svc = grade.NewService(store.Grades, store.Users, access)
	return f
}

func (f fixture) countRows(t *testing.T) int {
	grades, err := f.store.Grades.Query(context.Background(), grade.Filter{})
	require.NoError(t, err)
	return len(grades)
}

func score(f float64) *float64 { return &f }

func TestService_BulkInsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("other teacher", func(t *testing.T) {
		_, err := f.svc.BulkInsert(ctx, f.other.Principal(), grade.BulkGrades{
			ClassID:        f.class.ID,
			AssessmentType: "quiz",
			MaxScore:       10,
			Records:        []grade.Entry{{StudentID: f.alice.ID, Score: score(9)}},
		})
		assert.EqualError(t, err, "Access denied. You are not assigned to this class.")
		assert.Zero(t, f.countRows(t))
	})

	t.Run("score above max rejects the batch", func(t *testing.T) {
		_, err := f.svc.BulkInsert(ctx, f.owner.Principal(), grade.BulkGrades{
			ClassID:        f.class.ID,
			AssessmentType: "quiz",
			MaxScore:       10,
			Records: []grade.Entry{
				{StudentID: f.alice.ID, Score: score(9)},
				{StudentID: f.bob.ID, Score: score(10.5)},
			},
		})
		var valErr *core.ValidationError
		if assert.ErrorAs(t, err, &valErr) {
			assert.Equal(t, "1 score(s) exceed max score of 10.", err.Error())
		}
		assert.Zero(t, f.countRows(t))
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		data := grade.BulkGrades{
			ClassID:        f.class.ID,
			AssessmentType: "quiz",
			MaxScore:       10,
			Records:        []grade.Entry{{StudentID: f.alice.ID, Score: score(9)}},
		}
		for i := 0; i < 2; i++ {
			saved, err := f.svc.BulkInsert(ctx, f.owner.Principal(), data)
			require.NoError(t, err)
			assert.Len(t, saved, 1)
		}
		assert.Equal(t, 2, f.countRows(t))
	})
}

func TestService_Query(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.AddGrade(t, f.store.Grades, f.class.ID, f.alice.ID, "quiz", 9, 10)
	testutil.AddGrade(t, f.store.Grades, f.class.ID, f.alice.ID, "exam", 50, 100)
	testutil.AddGrade(t, f.store.Grades, f.class.ID, f.bob.ID, "exam", 80, 100)

	tests := []struct {
		name     string
		p        core.Principal
		filter   grade.Filter
		wantRows int
	}{
		{name: "admin", p: core.Principal{Role: core.RoleAdmin}, wantRows: 3},
		{name: "admin, by student", p: core.Principal{Role: core.RoleAdmin}, filter: grade.Filter{StudentID: f.bob.ID}, wantRows: 1},
		{name: "owner", p: f.owner.Principal(), wantRows: 3},
		{name: "teacher without classes", p: f.other.Principal(), wantRows: 0},
		{name: "student", p: f.alice.Principal(), wantRows: 2},
		{name: "student asking for another", p: f.alice.Principal(), filter: grade.Filter{StudentID: f.bob.ID}, wantRows: 0},
		{name: "parent", p: f.parent.Principal(), wantRows: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grades, err := f.svc.Query(ctx, tt.p, tt.filter)
			require.NoError(t, err)
			assert.Len(t, grades, tt.wantRows)
		})
	}
}

func TestService_ClassGradebook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.AddGrade(t, f.store.Grades, f.class.ID, f.alice.ID, "quiz", 9, 10)
	testutil.AddGrade(t, f.store.Grades, f.class.ID, f.alice.ID, "exam", 50, 100)

	book, err := f.svc.ClassGradebook(ctx, f.owner.Principal(), f.class.ID)
	require.NoError(t, err)
	assert.Equal(t, grade.Summary{
		TotalGrades:       2,
		AveragePercentage: 70,
		HighestPercentage: 90,
		LowestPercentage:  50,
		AssessmentTypes:   []string{"exam", "quiz"},
	}, book.Summary)
	if assert.Len(t, book.Grades, 2) {
		assert.Equal(t, "exam", book.Grades[0].AssessmentType)
		assert.Equal(t, "alice@eduos.test", book.Grades[0].StudentEmail)
	}

	_, err = f.svc.ClassGradebook(ctx, f.other.Principal(), f.class.ID)
	assert.EqualError(t, err, "Access denied. You are not assigned to this class.")
}
