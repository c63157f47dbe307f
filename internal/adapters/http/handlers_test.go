package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/collab"
	"github.com/keneynicxkunal/Real-Time-Collaborative-Code-Editor/internal/execute"
)

type stubJudge struct {
	createErr error
	poll      func(call int) (*execute.Submission, error)
	pollCalls int
}

func (s *stubJudge) CreateSubmission(context.Context, string, int) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	return "tok", nil
}

func (s *stubJudge) GetSubmission(context.Context, string) (*execute.Submission, error) {
	s.pollCalls++
	return s.poll(s.pollCalls)
}

func terminal(stdout string) *execute.Submission {
	sub := &execute.Submission{}
	sub.Status.ID = 3
	sub.Status.Description = "Accepted"
	sub.Stdout = &stdout
	return sub
}

func queued() *execute.Submission {
	sub := &execute.Submission{}
	sub.Status.ID = 1
	sub.Status.Description = "In Queue"
	return sub
}

func newExecuteRouter(backend execute.Backend, attempts int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	// Zero interval keeps the poll loop off the wall clock in tests.
	svc := execute.NewService(backend, attempts, 0)
	r := gin.New()
	r.POST("/api/execute", ExecuteHandler(svc))
	return r
}

func postExecute(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/execute", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestExecuteHandler_MissingFieldsIs400(t *testing.T) {
	req := require.New(t)
	r := newExecuteRouter(&stubJudge{}, 3)

	for _, body := range []string{
		`{}`,
		`{"sourceCode":"print(1)"}`,
		`{"language":"python"}`,
		`not json`,
	} {
		w := postExecute(r, body)
		req.Equal(http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestExecuteHandler_UnsupportedLanguageIs400(t *testing.T) {
	req := require.New(t)
	r := newExecuteRouter(&stubJudge{}, 3)

	w := postExecute(r, `{"sourceCode":"DISPLAY 'HI'.","language":"cobol"}`)

	req.Equal(http.StatusBadRequest, w.Code)
	req.Contains(w.Body.String(), "cobol")
}

func TestExecuteHandler_UpstreamFailureIs500(t *testing.T) {
	req := require.New(t)
	r := newExecuteRouter(&stubJudge{createErr: errors.New("backend returned 503: secret detail")}, 3)

	w := postExecute(r, `{"sourceCode":"1","language":"javascript"}`)

	req.Equal(http.StatusInternalServerError, w.Code)
	req.NotContains(w.Body.String(), "secret detail")
}

func TestExecuteHandler_TimeoutIs408(t *testing.T) {
	req := require.New(t)
	backend := &stubJudge{poll: func(int) (*execute.Submission, error) { return queued(), nil }}
	r := newExecuteRouter(backend, 3)

	w := postExecute(r, `{"sourceCode":"while True: pass","language":"python"}`)

	req.Equal(http.StatusRequestTimeout, w.Code)
	req.Equal(3, backend.pollCalls)
}

func TestExecuteHandler_Success(t *testing.T) {
	req := require.New(t)
	backend := &stubJudge{poll: func(call int) (*execute.Submission, error) {
		if call == 1 {
			return queued(), nil
		}
		return terminal("42\n"), nil
	}}
	r := newExecuteRouter(backend, 5)

	w := postExecute(r, `{"sourceCode":"print(42)","language":"python"}`)

	req.Equal(http.StatusOK, w.Code)
	var got map[string]any
	req.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	req.Equal("Accepted", got["status"])
	req.Equal("42\n", got["stdout"])
	req.Equal("", got["stderr"])
	req.Equal("", got["compileOutput"])
}

func TestRoomsHandler_ListsActiveRooms(t *testing.T) {
	req := require.New(t)
	gin.SetMode(gin.TestMode)

	reg := collab.NewRegistry()
	reg.Dispatch(collab.Join{RoomID: "ABCD", Conn: "x", Username: "alice"})
	reg.Dispatch(collab.Join{RoomID: "ABCD", Conn: "y", Username: "bob"})

	r := gin.New()
	r.GET("/api/rooms", RoomsHandler(reg))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	req.Equal(http.StatusOK, w.Code)
	var got struct {
		Rooms []collab.RoomInfo `json:"rooms"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	req.Len(got.Rooms, 1)
	req.Equal(2, got.Rooms[0].MemberCount)
}
