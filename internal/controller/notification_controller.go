// internal/controller/notification_controller.go
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/scaletracker-backend/internal/errors"
	"github.com/unclebandit/scaletracker-backend/internal/repository"
	"github.com/unclebandit/scaletracker-backend/internal/service"
)

type NotificationController struct {
	Service   *service.NotificationService
	Scheduler *service.Scheduler
	Ledger    repository.NotificationRepositoryInterface
}

// Send dispatches one reminder for a single campaign. The ledger
// write decides success; sheet sync status rides along separately.
func (c *NotificationController) Send(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "campaignId"))
	if err != nil || id < 1 {
		writeError(w, appErrors.NewValidation("invalid campaign id"))
		return
	}

	res, err := c.Service.DispatchByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Err != nil {
		// Ledger append failed; this dispatch failed outright.
		writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SendAllReady runs one full sweep synchronously and returns the
// per-campaign results. 409 when a sweep already holds the gate.
func (c *NotificationController) SendAllReady(w http.ResponseWriter, r *http.Request) {
	summary, err := c.Scheduler.RunSweep(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrSweepInProgress) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// History returns the most recent ledger entries, newest first.
func (c *NotificationController) History(w http.ResponseWriter, r *http.Request) {
	records, err := c.Ledger.History(repository.HistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
