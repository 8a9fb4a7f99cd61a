package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/me/dayplan/internal/config"
	"github.com/me/dayplan/internal/store"
	"github.com/me/dayplan/pkg/model"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return New(config.DefaultServerConfig(), st, logger)
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func do(t *testing.T, srv *Server, method, path, body string, wantStatus int) envelope {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("%s %s: status=%d, want %d, body=%s", method, path, w.Code, wantStatus, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
	}
	return env
}

const planBody = `{
	"name": "monday",
	"tasks": [
		{"name": "Write Report", "duration": 60, "priority": 1, "due_date": "2024-11-12"},
		{"name": "Rake Leaves", "duration": 60, "priority": 2, "due_date": "2024-11-11"}
	],
	"time_slots": [
		{"start": "2024-11-11 10:00", "end": "2024-11-11 11:00"},
		{"start": "2024-11-11 11:00", "end": "2024-11-11 12:00"}
	]
}`

func TestHealth(t *testing.T) {
	env := do(t, testServer(t), "GET", "/api/v1/health", "", http.StatusOK)
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if env.RequestID == "" {
		t.Error("request_id is empty")
	}

	var data struct {
		Status string `json:"status"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", data.Status)
	}
}

func TestDiscovery(t *testing.T) {
	env := do(t, testServer(t), "GET", "/api/v1/", "", http.StatusOK)

	var data struct {
		Name      string `json:"name"`
		Endpoints []struct {
			Path string `json:"path"`
		} `json:"endpoints"`
	}
	json.Unmarshal(env.Data, &data)
	if data.Name != "dayplan API" {
		t.Errorf("name = %q, want dayplan API", data.Name)
	}
	if len(data.Endpoints) < 5 {
		t.Errorf("endpoints count = %d, want >= 5", len(data.Endpoints))
	}
}

func TestCreatePlan(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "POST", "/api/v1/plans/", planBody, http.StatusCreated)

	var run model.PlanRun
	if err := json.Unmarshal(env.Data, &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.ID == "" {
		t.Error("run id is empty")
	}
	if len(run.Scheduled) != 2 {
		t.Fatalf("scheduled count = %d, want 2", len(run.Scheduled))
	}
	if run.Scheduled[0].Task.Name != "Write Report" {
		t.Errorf("first scheduled = %q, want Write Report", run.Scheduled[0].Task.Name)
	}
	if len(run.Unscheduled) != 0 {
		t.Errorf("unscheduled = %+v, want empty", run.Unscheduled)
	}

	// Round-trip via GET.
	env = do(t, srv, "GET", "/api/v1/plans/"+run.ID, "", http.StatusOK)
	var fetched model.PlanRun
	if err := json.Unmarshal(env.Data, &fetched); err != nil {
		t.Fatalf("decode fetched run: %v", err)
	}
	if fetched.Name != "monday" || len(fetched.Scheduled) != 2 {
		t.Errorf("fetched run = %+v", fetched)
	}
}

func TestCreatePlan_ValidationError(t *testing.T) {
	body := `{"tasks": [{"name": "", "duration": -5}], "time_slots": []}`
	env := do(t, testServer(t), "POST", "/api/v1/plans/", body, http.StatusBadRequest)

	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
	if env.Error == nil || env.Error.Code != model.ErrValidation {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
	if len(env.Error.Details) == 0 {
		t.Error("validation error has no field details")
	}
}

func TestCreatePlan_RuleError(t *testing.T) {
	body := `{
		"tasks": [{"name": "a", "duration": 30, "priority": 1, "due_date": "2024-11-11"}],
		"time_slots": [{"start": "2024-11-11 09:00", "end": "2024-11-11 10:00"}],
		"rules": [{"when": "task.(", "set_priority": "1"}]
	}`
	env := do(t, testServer(t), "POST", "/api/v1/plans/", body, http.StatusBadRequest)
	if env.Error == nil {
		t.Fatal("expected error for unparseable rule")
	}
}

func TestGetPlan_NotFound(t *testing.T) {
	env := do(t, testServer(t), "GET", "/api/v1/plans/nope", "", http.StatusNotFound)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestListPlans(t *testing.T) {
	srv := testServer(t)
	do(t, srv, "POST", "/api/v1/plans/", planBody, http.StatusCreated)
	do(t, srv, "POST", "/api/v1/plans/", planBody, http.StatusCreated)

	env := do(t, srv, "GET", "/api/v1/plans/?limit=1", "", http.StatusOK)
	if env.Pagination == nil {
		t.Fatal("pagination missing")
	}
	if env.Pagination.Total != 2 {
		t.Errorf("total = %d, want 2", env.Pagination.Total)
	}
	if !env.Pagination.HasMore {
		t.Error("has_more = false, want true")
	}

	var runs []model.PlanRun
	if err := json.Unmarshal(env.Data, &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("page size = %d, want 1", len(runs))
	}
}

func TestDeletePlan(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "POST", "/api/v1/plans/", planBody, http.StatusCreated)
	var run model.PlanRun
	json.Unmarshal(env.Data, &run)

	do(t, srv, "DELETE", "/api/v1/plans/"+run.ID, "", http.StatusOK)
	do(t, srv, "GET", "/api/v1/plans/"+run.ID, "", http.StatusNotFound)
	do(t, srv, "DELETE", "/api/v1/plans/"+run.ID, "", http.StatusNotFound)
}
