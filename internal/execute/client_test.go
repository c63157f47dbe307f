package execute

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_CreateSubmission(t *testing.T) {
	req := require.New(t)

	var gotBody map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/submissions", r.URL.Path)
		gotAuth = r.Header.Get("X-Auth-Token")
		req.NoError(json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"abc-123"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	token, err := c.CreateSubmission(context.Background(), "print(1)", 71)

	req.NoError(err)
	req.Equal("abc-123", token)
	req.Equal("secret-key", gotAuth)
	req.Equal("print(1)", gotBody["source_code"])
	req.Equal(float64(71), gotBody["language_id"])
	req.Equal(false, gotBody["base64_encoded"])
}

func TestClient_CreateSubmissionOmitsAuthWhenUnset(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header[http.CanonicalHeaderKey("X-Auth-Token")]
		req.False(ok)
		_, _ = w.Write([]byte(`{"token":"t"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.CreateSubmission(context.Background(), "1", 63)
	req.NoError(err)
}

func TestClient_CreateSubmissionNonSuccessIsError(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("queue full"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.CreateSubmission(context.Background(), "1", 63)

	req.Error(err)
	req.Contains(err.Error(), "503")
	req.Contains(err.Error(), "queue full")
}

func TestClient_GetSubmission(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/submissions/abc-123", r.URL.Path)
		req.Equal("false", r.URL.Query().Get("base64_encoded"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": {"id": 3, "description": "Accepted"},
			"stdout": "hi\n",
			"stderr": null,
			"compile_output": null,
			"time": "0.004",
			"memory": 3040
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	sub, err := c.GetSubmission(context.Background(), "abc-123")

	req.NoError(err)
	req.Equal(3, sub.Status.ID)
	req.Equal("Accepted", sub.Status.Description)
	req.Equal("hi\n", *sub.Stdout)
	req.Nil(sub.Stderr)
	req.Nil(sub.CompileOutput)
	req.Equal("0.004", sub.Time)
	req.Equal(float64(3040), sub.Memory)
}

func TestClient_GetSubmissionNonSuccessIsError(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.GetSubmission(context.Background(), "missing")
	req.Error(err)
	req.Contains(err.Error(), "404")
}
