package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	. "github.com/trezcool/eduos/apps/api/echo"
	"github.com/trezcool/eduos/core"
	"github.com/trezcool/eduos/core/analytics"
	"github.com/trezcool/eduos/core/attendance"
	"github.com/trezcool/eduos/core/grade"
	"github.com/trezcool/eduos/core/school"
	"github.com/trezcool/eduos/core/user"
	emailsvc "github.com/trezcool/eduos/services/email"
	logsvc "github.com/trezcool/eduos/services/logger"
	"github.com/trezcool/eduos/testutil"
)

func TestMain(m *testing.M) {
	core.Conf.PasswordHashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// setup serves a fresh in-memory store; wrap may swap repositories before the services are built.
func setup(t *testing.T, wrap ...func(*testutil.Store)) (Server, testutil.Store) {
	store := testutil.NewStore(t)
	for _, w := range wrap {
		w(&store)
	}

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	schoolSvc := school.NewService(store.School, store.Users)

	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf),
			UserSvc:        user.NewService(store.Users, mailSvc),
			SchoolSvc:      schoolSvc,
			AttendanceSvc:  attendance.NewService(store.Attendance, schoolSvc),
			GradeSvc:       grade.NewService(store.Grades, store.Users, schoolSvc),
			AnalyticsSvc: analytics.NewService(analytics.Repositories{
				Users:      store.Users,
				School:     store.School,
				Attendance: store.Attendance,
				Grades:     store.Grades,
			}),
		},
	)
	return app, store
}

type httpErr struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func errBody(t *testing.T, msg string) []byte {
	return marshalObj(t, httpErr{Error: msg})
}

// envelope is the success reply; Data is compared as JSON.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

func okBody(t *testing.T, data interface{}) []byte {
	return marshalObj(t, envelope{Success: true, Data: marshalObj(t, data)})
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// decodeData unmarshals the data of a success envelope into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.True(t, env.Success, rec.Body.String())
	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v))
	}
	return env
}

func TestServer_health(t *testing.T) {
	app, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/health")
	app.ServeHTTP(rec, req)

	var data map[string]string
	decodeData(t, rec, &data)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", data["status"])
}

func TestServer_metrics(t *testing.T) {
	app, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/health")
	app.ServeHTTP(rec, req)
	req, rec = newRequest(http.MethodGet, "/api/users")
	app.ServeHTTP(rec, req)

	req, rec = newRequest(http.MethodGet, "/metrics")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `eduos_http_requests_total{code="200",method="GET",route="/health"} 1`)
	assert.Contains(t, body, `eduos_http_requests_total{code="401",method="GET",route="/api/users"} 1`)
}

func TestServer_notFound(t *testing.T) {
	app, _ := setup(t)
	runHTTPTests(t, app, []httpTest{
		{name: "unknown route", path: "/nope", wantCode: http.StatusNotFound, wantData: errBody(t, "Not Found")},
	})
}
