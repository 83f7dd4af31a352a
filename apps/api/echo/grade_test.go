package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/testutil"
)

func gradesBody(t *testing.T, classID, assessment string, maxScore float64, scores map[string]float64, order ...string) []byte {
	records := make([]grade.Entry, 0, len(order))
	for _, id := range order {
		score := scores[id]
		records = append(records, grade.Entry{StudentID: id, Score: &score})
	}
	return marshalObj(t, grade.BulkGrades{ClassID: classID, AssessmentType: assessment, MaxScore: maxScore, Records: records})
}

func Test_gradeApi_bulkInsert(t *testing.T) {
	app, store := setup(t)
	fx := newAttendanceFixture(t, store)

	stored := func(t *testing.T) []grade.Detail {
		grades, err := store.Grades.Query(context.Background(), grade.Filter{ClassID: fx.mathID})
		require.NoError(t, err)
		return grades
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "Every violated field", method: http.MethodPost, path: "/api/grades", token: fx.tom,
			body:     []byte(`{"class_id":"` + fx.mathID + `","max_score":0,"records":[{"student_id":"` + fx.amyID + `","score":-1}]}`),
			wantCode: http.StatusBadRequest,
			wantData: errBody(t, "assessment_type is required, max_score is required, score must be 0 or greater"),
		},
		{
			name: "Scores beyond the column range", method: http.MethodPost, path: "/api/grades", token: fx.tom,
			body:     []byte(`{"class_id":"` + fx.mathID + `","assessment_type":"exam","max_score":100000,"records":[{"student_id":"` + fx.amyID + `","score":33.333}]}`),
			wantCode: http.StatusBadRequest,
			wantData: errBody(t, "max_score must be 9,999.99 or less, score must have at most 2 decimal places"),
		},
		{
			name: "Missing records", method: http.MethodPost, path: "/api/grades", token: fx.tom,
			body:     []byte(`{"class_id":"` + fx.mathID + `","assessment_type":"quiz","max_score":10}`),
			wantCode: http.StatusBadRequest,
			wantData: errBody(t, "records is required"),
		},
		{
			name: "Missing score", method: http.MethodPost, path: "/api/grades", token: fx.tom,
			body:     []byte(`{"class_id":"` + fx.mathID + `","assessment_type":"quiz","max_score":10,"records":[{"student_id":"` + fx.amyID + `"}]}`),
			wantCode: http.StatusBadRequest,
			wantData: errBody(t, "score is required"),
		},
		{
			name: "Other teacher", method: http.MethodPost, path: "/api/grades", token: fx.uma,
			body:     gradesBody(t, fx.mathID, "quiz", 10, map[string]float64{fx.amyID: 9}, fx.amyID),
			wantCode: http.StatusForbidden, wantData: errBody(t, "Access denied. You are not assigned to this class."),
		},
		{
			name: "One score above max rejects the batch", method: http.MethodPost, path: "/api/grades", token: fx.tom,
			body:     gradesBody(t, fx.mathID, "quiz", 10, map[string]float64{fx.amyID: 9, fx.bobID: 11}, fx.amyID, fx.bobID),
			wantCode: http.StatusBadRequest, wantData: errBody(t, "1 score(s) exceed max score of 10."),
		},
	})
	assert.Empty(t, stored(t), "rejected batches must not write")

	t.Run("Empty batch", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/grades", fx.tom, gradesBody(t, fx.mathID, "quiz", 10, nil))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var grades []grade.Grade
		env := decodeData(t, rec, &grades)
		assert.NotNil(t, grades)
		assert.Empty(t, grades)
		assert.Equal(t, "0 grade records saved.", env.Message)
	})

	t.Run("Two decimals are kept", func(t *testing.T) {
		body := gradesBody(t, fx.mathID, "essay", 9999.99, map[string]float64{fx.amyID: 33.33}, fx.amyID)
		req, rec := newAuthRequest(http.MethodPost, "/api/grades", fx.tom, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		grades := stored(t)
		require.Len(t, grades, 1)
		assert.Equal(t, 33.33, grades[0].Score)
		assert.Equal(t, 9999.99, grades[0].MaxScore)
	})

	body := gradesBody(t, fx.mathID, "quiz", 10, map[string]float64{fx.amyID: 9, fx.bobID: 7.5}, fx.amyID, fx.bobID)
	for i := 0; i < 2; i++ {
		req, rec := newAuthRequest(http.MethodPost, "/api/grades", fx.tom, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var grades []grade.Grade
		env := decodeData(t, rec, &grades)
		assert.Len(t, grades, 2)
		assert.Equal(t, "2 grade records saved.", env.Message)
	}
	assert.Len(t, stored(t), 5, "grade inserts are not idempotent")
}

func Test_gradeApi_query(t *testing.T) {
	app, store := setup(t)
	fx := newAttendanceFixture(t, store)
	testutil.AddGrade(t, store.Grades, fx.mathID, fx.amyID, "exam", 50, 100)
	testutil.AddGrade(t, store.Grades, fx.mathID, fx.bobID, "exam", 80, 100)

	list := func(t *testing.T, token, query string) []grade.Detail {
		req, rec := newAuthRequest(http.MethodGet, "/api/grades"+query, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var grades []grade.Detail
		decodeData(t, rec, &grades)
		return grades
	}

	assert.Len(t, list(t, fx.admin, ""), 2)
	assert.Len(t, list(t, fx.admin, "?student_id="+fx.bobID), 1)
	assert.Len(t, list(t, fx.tom, ""), 2)
	assert.Empty(t, list(t, fx.uma, ""))

	own := list(t, fx.amy, "")
	require.Len(t, own, 1)
	assert.Equal(t, fx.amyID, own[0].StudentID)
	assert.Equal(t, "amy@eduos.test", own[0].StudentEmail)
	assert.Empty(t, list(t, fx.amy, "?student_id="+fx.bobID), "students only see themselves")

	assert.Len(t, list(t, fx.parent, ""), 1)
	assert.Empty(t, list(t, fx.otherParent, ""))
}

func Test_gradeApi_classGradebook(t *testing.T) {
	app, store := setup(t)
	fx := newAttendanceFixture(t, store)
	testutil.AddGrade(t, store.Grades, fx.mathID, fx.amyID, "quiz", 9, 10)
	testutil.AddGrade(t, store.Grades, fx.mathID, fx.amyID, "exam", 50, 100)
	path := "/api/grades/class/" + fx.mathID

	req, rec := newAuthRequest(http.MethodGet, path, fx.tom)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var book grade.Gradebook
	decodeData(t, rec, &book)
	require.Len(t, book.Grades, 2)
	assert.Equal(t, "exam", book.Grades[0].AssessmentType, "ordered by assessment type")
	assert.Equal(t, grade.Summary{
		TotalGrades:       2,
		AveragePercentage: 70,
		HighestPercentage: 90,
		LowestPercentage:  50,
		AssessmentTypes:   []string{"exam", "quiz"},
	}, book.Summary)

	runHTTPTests(t, app, []httpTest{
		{
			name: "Other teacher", path: path, token: fx.uma,
			wantCode: http.StatusForbidden, wantData: errBody(t, "Access denied. You are not assigned to this class."),
		},
		{
			name: "Student denied", path: path, token: fx.amy,
			wantCode: http.StatusForbidden, wantData: errBody(t, "Access denied. This resource requires one of: admin, teacher"),
		},
	})
}
