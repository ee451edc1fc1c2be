package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"checklist/internal/api"
	"checklist/internal/testsupport"
)

func newTestAPI(t *testing.T, opts ...testsupport.ConfigOption) (*apiServer, http.Handler) {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithAPIBind("127.0.0.1:0")}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	d, err := New(cfg, store, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if d.api == nil {
		t.Fatal("expected api server when api_bind is set")
	}
	return d.api, d.api.server.Handler
}

func serve(handler http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestAPICreateListUpdateDelete(t *testing.T) {
	_, handler := newTestAPI(t)

	w := serve(handler, http.MethodGet, "/api/todos", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"todos":[]}` {
		t.Fatalf("expected empty todo array, got %s", got)
	}

	w = serve(handler, http.MethodPost, "/api/todos", `{"title":"Buy milk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	var created api.TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Todo.ID <= 0 || created.Todo.Title != "Buy milk" || created.Todo.Completed {
		t.Fatalf("unexpected created todo: %+v", created.Todo)
	}
	if created.Todo.CreatedTime().IsZero() {
		t.Fatalf("expected created_at, got %q", created.Todo.CreatedAt)
	}
	if loc := w.Header().Get("Location"); loc != "/api/todos/1" {
		t.Fatalf("unexpected Location header %q", loc)
	}

	w = serve(handler, http.MethodPatch, "/api/todos/1", `{"completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var updated api.TodoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if !updated.Todo.Completed || updated.Todo.Title != "Buy milk" || updated.Todo.CreatedAt != created.Todo.CreatedAt {
		t.Fatalf("update changed more than completion: %+v vs %+v", updated.Todo, created.Todo)
	}

	w = serve(handler, http.MethodDelete, "/api/todos/1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 No Content, got %d", w.Code)
	}
	w = serve(handler, http.MethodDelete, "/api/todos/1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected repeated delete to succeed, got %d", w.Code)
	}

	w = serve(handler, http.MethodGet, "/api/todos", "")
	var list api.TodoListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Todos) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list.Todos))
	}
}

func TestAPIValidationErrors(t *testing.T) {
	_, handler := newTestAPI(t)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		path   string
	}{
		{name: "blank title", method: http.MethodPost, target: "/api/todos", body: `{"title":"   "}`, path: "title"},
		{name: "no-break space title", method: http.MethodPost, target: "/api/todos", body: `{"title":"\u00a0"}`, path: "title"},
		{name: "ideographic space title", method: http.MethodPost, target: "/api/todos", body: `{"title":"\u3000"}`, path: "title"},
		{name: "em space title", method: http.MethodPost, target: "/api/todos", body: `{"title":"\u2003\u2003"}`, path: "title"},
		{name: "vertical tab title", method: http.MethodPost, target: "/api/todos", body: `{"title":"\u000b"}`, path: "title"},
		{name: "missing title", method: http.MethodPost, target: "/api/todos", body: `{}`, path: "title"},
		{name: "wrong type", method: http.MethodPost, target: "/api/todos", body: `{"title":42}`, path: "title"},
		{name: "empty body", method: http.MethodPost, target: "/api/todos", body: ""},
		{name: "non-numeric id", method: http.MethodPatch, target: "/api/todos/abc", body: `{"completed":true}`, path: "id"},
		{name: "zero id", method: http.MethodDelete, target: "/api/todos/0", path: "id"},
		{name: "missing completed", method: http.MethodPatch, target: "/api/todos/1", body: `{}`, path: "completed"},
		{name: "malformed body", method: http.MethodPatch, target: "/api/todos/1", body: `{"completed":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(handler, tc.method, tc.target, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			resp := decodeError(t, w)
			if resp.Kind != "validation" {
				t.Fatalf("expected validation kind, got %q", resp.Kind)
			}
			if tc.path != "" && resp.Path != tc.path {
				t.Fatalf("expected path %q, got %q (%s)", tc.path, resp.Path, resp.Error)
			}
		})
	}
}

func TestAPIUpdateMissingTodo(t *testing.T) {
	_, handler := newTestAPI(t)

	w := serve(handler, http.MethodPatch, "/api/todos/999", `{"completed":true}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Kind != "not_found" {
		t.Fatalf("expected not_found kind, got %q", resp.Kind)
	}
	if !strings.Contains(resp.Error, "todo with id 999 not found") {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
}

func TestAPIAuthRequiresBearerToken(t *testing.T) {
	_, handler := newTestAPI(t, testsupport.WithAPIToken("s3cret"))

	w := serve(handler, http.MethodGet, "/api/todos", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	w = serve(handler, http.MethodGet, "/api/todos", "", "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}
	w = serve(handler, http.MethodGet, "/api/todos", "", "Authorization", "Bearer s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
}

func TestAPIRequestID(t *testing.T) {
	_, handler := newTestAPI(t)

	w := serve(handler, http.MethodGet, "/api/todos", "")
	generated := w.Header().Get(requestIDHeader)
	if _, err := uuid.Parse(generated); err != nil {
		t.Fatalf("expected generated uuid request id, got %q", generated)
	}

	supplied := uuid.NewString()
	w = serve(handler, http.MethodGet, "/api/todos", "", requestIDHeader, supplied)
	if got := w.Header().Get(requestIDHeader); got != supplied {
		t.Fatalf("expected supplied request id %q, got %q", supplied, got)
	}

	w = serve(handler, http.MethodGet, "/api/todos", "", requestIDHeader, "not-a-uuid")
	if got := w.Header().Get(requestIDHeader); got == "not-a-uuid" {
		t.Fatal("expected invalid request id to be replaced")
	}
}

func TestAPIStatusAndRouting(t *testing.T) {
	srv, handler := newTestAPI(t)
	if _, err := srv.daemon.todos.CreateTodo(t.Context(), api.CreateTodoInput{Title: "one"}); err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	w := serve(handler, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var status api.DaemonStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Todos.Total != 1 || status.Todos.Pending != 1 {
		t.Fatalf("unexpected todo stats: %+v", status.Todos)
	}
	if status.DBPath == "" || status.PID == 0 {
		t.Fatalf("status missing paths: %+v", status)
	}

	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodPut, "/api/todos", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/todos/1", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/status", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
		{http.MethodGet, "/elsewhere", http.StatusNotFound},
	} {
		w := serve(handler, tc.method, tc.path, `{}`)
		if w.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, w.Code)
		}
		if _, err := uuid.Parse(w.Header().Get(requestIDHeader)); err != nil {
			t.Fatalf("%s %s: expected request id on unmatched route, got %q", tc.method, tc.path, w.Header().Get(requestIDHeader))
		}
		var body api.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
			t.Fatalf("%s %s: expected json error body, got %q", tc.method, tc.path, w.Body.String())
		}
	}
}
