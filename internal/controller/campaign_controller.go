// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/scaletracker-backend/internal/errors"
	"github.com/unclebandit/scaletracker-backend/internal/model"
	"github.com/unclebandit/scaletracker-backend/internal/repository"
	"github.com/unclebandit/scaletracker-backend/internal/service"
)

type CampaignController struct {
	Repo     repository.CampaignRepositoryInterface
	Settings repository.SettingsRepositoryInterface
	Service  *service.NotificationService
}

type campaignPayload struct {
	AccountName              string      `json:"account_name"`
	CampaignName             string      `json:"campaign_name"`
	LaunchDate               model.Date  `json:"launch_date"`
	LastScaledDate           *model.Date `json:"last_scaled_date"`
	NotificationIntervalDays int         `json:"notification_interval_days"`
	Status                   model.Status `json:"status"`
}

func (p *campaignPayload) validate() error {
	if p.AccountName == "" || p.CampaignName == "" || p.LaunchDate.IsZero() {
		return appErrors.NewValidation("missing required fields: account_name, campaign_name, launch_date")
	}
	if p.Status != "" && !model.ValidStatus(p.Status) {
		return appErrors.NewValidation("invalid status %q", p.Status)
	}
	return nil
}

func campaignID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, appErrors.NewValidation("invalid campaign id")
	}
	return id, nil
}

// defaultInterval reads the configured default interval from
// settings, falling back to the built-in default.
func (c *CampaignController) defaultInterval() int {
	value, err := c.Settings.Get(repository.SettingDefaultInterval)
	if err != nil {
		return model.DefaultIntervalDays
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return model.DefaultIntervalDays
	}
	return n
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body campaignPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("invalid request body: %v", err))
		return
	}
	if err := body.validate(); err != nil {
		writeError(w, err)
		return
	}

	campaign := &model.Campaign{
		AccountName:              body.AccountName,
		CampaignName:             body.CampaignName,
		LaunchDate:               body.LaunchDate,
		LastScaledDate:           body.LastScaledDate,
		NotificationIntervalDays: body.NotificationIntervalDays,
		Status:                   body.Status,
	}
	if campaign.NotificationIntervalDays < 1 {
		campaign.NotificationIntervalDays = c.defaultInterval()
	}

	if err := c.Repo.Create(campaign); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.Repo.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	campaign, err := c.Repo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body campaignPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("invalid request body: %v", err))
		return
	}
	if err := body.validate(); err != nil {
		writeError(w, err)
		return
	}

	campaign := &model.Campaign{
		ID:                       id,
		AccountName:              body.AccountName,
		CampaignName:             body.CampaignName,
		LaunchDate:               body.LaunchDate,
		LastScaledDate:           body.LastScaledDate,
		NotificationIntervalDays: body.NotificationIntervalDays,
		Status:                   body.Status,
	}
	if campaign.NotificationIntervalDays < 1 {
		campaign.NotificationIntervalDays = c.defaultInterval()
	}
	if campaign.Status == "" {
		campaign.Status = model.StatusActive
	}

	if err := c.Repo.Update(campaign); err != nil {
		writeError(w, err)
		return
	}
	updated, err := c.Repo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := c.Repo.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	// Ledger entries referencing the campaign stay in place.
	writeJSON(w, http.StatusOK, map[string]string{"message": "campaign deleted"})
}

// MarkScaled records a scale action, resetting the campaign's
// readiness countdown. Absent a date in the body, today is used.
func (c *CampaignController) MarkScaled(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Date *model.Date `json:"date"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, appErrors.NewValidation("invalid request body: %v", err))
			return
		}
	}

	date := c.Service.CurrentDay()
	if body.Date != nil && !body.Date.IsZero() {
		date = *body.Date
	}

	if err := c.Repo.MarkScaled(id, date); err != nil {
		writeError(w, err)
		return
	}
	updated, err := c.Repo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c *CampaignController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := campaignID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Status model.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("invalid request body: %v", err))
		return
	}
	if !model.ValidStatus(body.Status) {
		writeError(w, appErrors.NewValidation("invalid status %q", body.Status))
		return
	}

	if err := c.Repo.UpdateStatus(id, body.Status); err != nil {
		writeError(w, err)
		return
	}
	updated, err := c.Repo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CheckReadyForScaling lists campaigns due today, ordered by account
// name then campaign name.
func (c *CampaignController) CheckReadyForScaling(w http.ResponseWriter, r *http.Request) {
	ready, err := c.Service.ReadyForScaling()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ready)
}

// Summary returns classification counts for the dashboard.
func (c *CampaignController) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.Service.Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
