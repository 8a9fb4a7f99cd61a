package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/me/dayplan/internal/rules"
	"github.com/me/dayplan/internal/scheduler"
	"github.com/me/dayplan/pkg/model"
)

// maxPlanBody caps the accepted plan document size.
const maxPlanBody = 1 << 20 // 1 MiB

// handleCreatePlan accepts a plan document, runs the allocator, stores the
// run, and returns it.
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPlanBody))
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("read request body: "+err.Error()))
		return
	}

	plan, err := s.loader.Parse(body)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			respondError(w, reqID, http.StatusBadRequest, apiErr)
			return
		}
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	now := time.Now().UTC()
	tasks, err := rules.New(s.logger, now).Apply(plan.Tasks, plan.Rules)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	sched, err := scheduler.Allocate(tasks, plan.Slots)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	run := &model.PlanRun{
		ID:          "plan_" + uuid.New().String()[:8],
		Name:        plan.Name,
		Tasks:       plan.Tasks,
		Slots:       plan.Slots,
		Scheduled:   sched.Scheduled,
		Unscheduled: sched.Unscheduled,
		CreatedAt:   now,
	}
	if err := s.store.CreatePlanRun(r.Context(), run); err != nil {
		s.logger.Error("store plan run", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to store plan run"})
		return
	}

	s.logger.Info("plan run created",
		"id", run.ID,
		"scheduled", len(run.Scheduled),
		"unscheduled", len(run.Unscheduled),
	)
	respondCreated(w, reqID, run)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	run, err := s.store.GetPlanRun(r.Context(), id)
	if err != nil {
		s.logger.Error("get plan run", "error", err, "id", id)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to load plan run"})
		return
	}
	if run == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("plan run", id))
		return
	}
	respondOK(w, reqID, run)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}
	opts.Clamp()

	runs, total, err := s.store.ListPlanRuns(r.Context(), opts)
	if err != nil {
		s.logger.Error("list plan runs", "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to list plan runs"})
		return
	}
	if runs == nil {
		runs = []*model.PlanRun{}
	}

	respondList(w, reqID, runs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(runs) < total,
	})
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeletePlanRun(r.Context(), id); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrNotFound {
			respondError(w, reqID, http.StatusNotFound, apiErr)
			return
		}
		s.logger.Error("delete plan run", "error", err, "id", id)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to delete plan run"})
		return
	}
	respondOK(w, reqID, map[string]string{"id": id, "deleted": "true"})
}
