package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richochetclementine1315/Quill/core/domain"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "jwt", Value: "token-7", Path: "/"})
		reply(w, http.StatusOK, map[string]string{"message": "Login successful"})
	})
	mux.HandleFunc("GET /api/allpost", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, domain.PostPage{
			Data: []domain.Post{{ID: 1, Title: "First", User: domain.User{FirstName: "Ada", LastName: "L"}}},
			Meta: domain.PageMeta{Page: 1, Total: 1, LastPage: 1},
		})
	})
	mux.HandleFunc("GET /api/allpost/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			reply(w, http.StatusNotFound, map[string]string{"message": "Oops! Record not found"})
			return
		}
		reply(w, http.StatusOK, domain.PostEnvelope{Data: domain.Post{ID: 1, Title: "First"}})
	})
	mux.HandleFunc("GET /api/uniquepost", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("jwt"); err != nil || c.Value != "token-7" {
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated"})
			return
		}
		reply(w, http.StatusOK, []domain.Post{{ID: 2, Title: "Mine"}})
	})
	mux.HandleFunc("POST /api/post", func(w http.ResponseWriter, r *http.Request) {
		var in domain.PostInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		reply(w, http.StatusOK, domain.CreatePostResponse{Message: "created", Post: domain.Post{ID: 3, Title: in.Title}})
	})
	mux.HandleFunc("DELETE /api/deletepost/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, domain.MessageResponse{Message: "Post deleted successfully"})
	})
	mux.HandleFunc("POST /api/upload-image", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("image")
		if err != nil {
			reply(w, http.StatusBadRequest, map[string]string{"message": "no file"})
			return
		}
		reply(w, http.StatusOK, domain.UploadResult{URL: "http://uploads/" + header.Filename})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, backendURL string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	parser, _ := newCLI(&out)
	_, err := parser.ParseArgs(append([]string{"--base-url", backendURL + "/api", "--retries", "0"}, args...))
	return out.String(), err
}

func TestCLI_Probe(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "probe")

	require.NoError(t, err)
	assert.Contains(t, out, "backend is awake")
}

func TestCLI_ProbeUnreachable(t *testing.T) {
	srv := newBackend(t)
	url := srv.URL
	srv.Close()

	out, err := run(t, url, "probe")

	assert.Error(t, err)
	assert.Contains(t, out, "backend is asleep")
}

func TestCLI_PostsList(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "posts", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "#1  First  by Ada L")
	assert.Contains(t, out, "page 1 of 1, 1 posts")
}

func TestCLI_PostsListJSON(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "--json", "posts", "list", "--page", "1")

	require.NoError(t, err)
	var page domain.PostPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, "First", page.Data[0].Title)
}

func TestCLI_PostsGetReportsMissing(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "posts", "get", "1", "42")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Oops! Record not found")
	assert.Contains(t, out, "#1  First")
}

func TestCLI_LoginThenMine(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "login", "--email", "a@b.c", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "export QUILL_TOKEN=token-7")

	_, err = run(t, srv.URL, "posts", "mine")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthenticated")

	out, err = run(t, srv.URL, "--token", "token-7", "posts", "mine")
	require.NoError(t, err)
	assert.Contains(t, out, "#2  Mine")
}

func TestCLI_CreateAndDelete(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "--token", "token-7", "posts", "create", "--title", "Hello", "--idempotency-key", "k1")
	require.NoError(t, err)
	assert.Contains(t, out, "created post #3")

	out, err = run(t, srv.URL, "--token", "token-7", "posts", "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Post deleted successfully")
}

func TestCLI_CreateRequiresTitle(t *testing.T) {
	srv := newBackend(t)

	_, err := run(t, srv.URL, "posts", "create", "--desc", "no title")

	assert.Error(t, err)
}

func TestCLI_Upload(t *testing.T) {
	srv := newBackend(t)
	path := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	out, err := run(t, srv.URL, "upload", path)

	require.NoError(t, err)
	assert.Contains(t, out, "http://uploads/cover.png")
}
