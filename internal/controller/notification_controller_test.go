package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/scaletracker-backend/internal/config"
	"github.com/unclebandit/scaletracker-backend/internal/controller"
	"github.com/unclebandit/scaletracker-backend/internal/model"
	"github.com/unclebandit/scaletracker-backend/internal/service"
)

type blockingSink struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingSink) AppendRow(ctx context.Context, ts time.Time, account, campaign string) (int, error) {
	close(s.started)
	<-s.release
	return 2, nil
}

func notificationRouter(t *testing.T, repo *MockCampaignRepo, ledger *MockLedger, sink service.SheetSink) *chi.Mux {
	t.Helper()
	svc := &service.NotificationService{
		Campaigns: repo,
		Ledger:    ledger,
		Sink:      sink,
		Location:  time.UTC,
		Now:       fixedNow,
	}
	scheduler, err := service.NewScheduler(svc, config.SchedulerConfig{
		Hour: 9, Minute: 0, Timezone: "UTC",
	})
	if err != nil {
		t.Fatalf("NewScheduler() error: %v", err)
	}
	ctrl := &controller.NotificationController{
		Service:   svc,
		Scheduler: scheduler,
		Ledger:    ledger,
	}

	r := chi.NewRouter()
	r.Post("/notifications/send/{campaignId}", ctrl.Send)
	r.Post("/notifications/send-all-ready", ctrl.SendAllReady)
	r.Get("/notifications/history", ctrl.History)
	return r
}

func dueCampaign(id int, name string) *model.Campaign {
	scaledAt := model.NewDate(2024, 3, 1)
	return &model.Campaign{
		ID:                       id,
		AccountName:              "Acme",
		CampaignName:             name,
		LaunchDate:               model.NewDate(2024, 2, 1),
		LastScaledDate:           &scaledAt,
		NotificationIntervalDays: 7,
		Status:                   model.StatusActive,
	}
}

func TestSendNotification(t *testing.T) {
	repo := &MockCampaignRepo{campaigns: []*model.Campaign{dueCampaign(1, "Spring Push")}}
	ledger := &MockLedger{}
	r := notificationRouter(t, repo, ledger, nil)

	w := doRequest(t, r, "POST", "/notifications/send/1", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var res service.DispatchResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Logged {
		t.Error("dispatch should be logged")
	}
	if res.SheetSynced {
		t.Error("no sink configured, sheet_synced should be false")
	}
	if len(ledger.records) != 1 {
		t.Fatalf("ledger has %d records, want 1", len(ledger.records))
	}
	if ledger.records[0].CampaignName != "Spring Push" {
		t.Errorf("ledger snapshot name = %q", ledger.records[0].CampaignName)
	}
}

func TestSendNotification_NotFound(t *testing.T) {
	r := notificationRouter(t, &MockCampaignRepo{}, &MockLedger{}, nil)

	w := doRequest(t, r, "POST", "/notifications/send/42", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSendNotification_LedgerFailure(t *testing.T) {
	repo := &MockCampaignRepo{campaigns: []*model.Campaign{dueCampaign(1, "Spring Push")}}
	ledger := &MockLedger{failErr: errors.New("connection refused")}
	r := notificationRouter(t, repo, ledger, nil)

	w := doRequest(t, r, "POST", "/notifications/send/1", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500: %s", w.Code, w.Body.String())
	}
}

func TestSendAllReady(t *testing.T) {
	repo := &MockCampaignRepo{campaigns: []*model.Campaign{
		dueCampaign(1, "Due One"),
		dueCampaign(2, "Due Two"),
		{
			ID: 3, AccountName: "Acme", CampaignName: "Fresh",
			LaunchDate: model.NewDate(2024, 3, 14), Status: model.StatusActive,
			NotificationIntervalDays: 7,
		},
	}}
	ledger := &MockLedger{}
	r := notificationRouter(t, repo, ledger, nil)

	w := doRequest(t, r, "POST", "/notifications/send-all-ready", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var summary service.SweepSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Trigger != "manual" {
		t.Errorf("trigger = %q, want manual", summary.Trigger)
	}
	if summary.Checked != 3 || summary.Ready != 2 || summary.Logged != 2 {
		t.Errorf("counts = checked %d ready %d logged %d, want 3/2/2",
			summary.Checked, summary.Ready, summary.Logged)
	}
	if len(ledger.records) != 2 {
		t.Errorf("ledger has %d records, want 2", len(ledger.records))
	}
}

func TestSendAllReady_Conflict(t *testing.T) {
	repo := &MockCampaignRepo{campaigns: []*model.Campaign{dueCampaign(1, "Due One")}}
	sink := &blockingSink{started: make(chan struct{}), release: make(chan struct{})}
	r := notificationRouter(t, repo, &MockLedger{}, sink)

	done := make(chan int, 1)
	go func() {
		w := doRequest(t, r, "POST", "/notifications/send-all-ready", nil)
		done <- w.Code
	}()

	// Wait until the first sweep is inside the sink call, so the gate
	// is held when the second request arrives.
	select {
	case <-sink.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first sweep never reached the sink")
	}

	w := doRequest(t, r, "POST", "/notifications/send-all-ready", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}

	close(sink.release)
	select {
	case code := <-done:
		if code != http.StatusOK {
			t.Errorf("first sweep status = %d, want 200", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first sweep never finished")
	}
}

func TestNotificationHistory(t *testing.T) {
	ledger := &MockLedger{records: []*model.NotificationRecord{
		{ID: 2, CampaignID: 1, AccountName: "Acme", CampaignName: "Spring Push", SentAt: fixedNow()},
		{ID: 1, CampaignID: 1, AccountName: "Acme", CampaignName: "Spring Push", SentAt: fixedNow().Add(-24 * time.Hour)},
	}}
	r := notificationRouter(t, &MockCampaignRepo{}, ledger, nil)

	w := doRequest(t, r, "GET", "/notifications/history", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var records []model.NotificationRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(records) != 2 || records[0].ID != 2 {
		t.Errorf("unexpected history: %+v", records)
	}
}
