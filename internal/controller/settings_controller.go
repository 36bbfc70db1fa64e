// internal/controller/settings_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/scaletracker-backend/internal/errors"
	"github.com/unclebandit/scaletracker-backend/internal/repository"
)

type SettingsController struct {
	Repo repository.SettingsRepositoryInterface
}

func (c *SettingsController) GetAll(w http.ResponseWriter, r *http.Request) {
	settings, err := c.Repo.All()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (c *SettingsController) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := c.Repo.Get(key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (c *SettingsController) Set(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var body struct {
		Value *string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("invalid request body: %v", err))
		return
	}
	if body.Value == nil {
		writeError(w, appErrors.NewValidation("value is required"))
		return
	}

	if err := c.Repo.Set(key, *body.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": *body.Value})
}
