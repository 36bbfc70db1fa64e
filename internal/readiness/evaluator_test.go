package readiness

import (
	"testing"

	"github.com/unclebandit/scaletracker-backend/internal/model"
)

func date(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *model.Date {
	d := date(s)
	return &d
}

func campaign(status model.Status, lastScaled *model.Date, interval int) *model.Campaign {
	return &model.Campaign{
		ID:                       1,
		AccountName:              "Acme",
		CampaignName:             "Spring Push",
		LaunchDate:               date("2024-01-01"),
		LastScaledDate:           lastScaled,
		NotificationIntervalDays: interval,
		Status:                   status,
	}
}

func TestIsReadyOverdueScenario(t *testing.T) {
	c := campaign(model.StatusActive, datePtr("2024-03-01"), 7)
	today := date("2024-03-10")

	due, ok := NextDueDate(c)
	if !ok || due.String() != "2024-03-08" {
		t.Errorf("NextDueDate = %v, %v, want 2024-03-08, true", due, ok)
	}
	if !IsReady(c, today) {
		t.Error("IsReady = false, want true")
	}
	overdue, ok := DaysOverdue(c, today)
	if !ok || overdue != 2 {
		t.Errorf("DaysOverdue = %d, %v, want 2, true", overdue, ok)
	}
	if got := Classify(c, today); got != StateReady {
		t.Errorf("Classify = %s, want %s", got, StateReady)
	}
}

func TestUpcomingScenario(t *testing.T) {
	c := campaign(model.StatusActive, datePtr("2024-03-01"), 7)
	today := date("2024-03-05")

	if IsReady(c, today) {
		t.Error("IsReady = true, want false")
	}
	until, ok := DaysUntilDue(c, today)
	if !ok || until != 3 {
		t.Errorf("DaysUntilDue = %d, %v, want 3, true", until, ok)
	}
	if !IsUpcoming(c, today) {
		t.Error("IsUpcoming = false, want true")
	}
	if got := Classify(c, today); got != StateUpcoming {
		t.Errorf("Classify = %s, want %s", got, StateUpcoming)
	}
}

func TestReadyExactlyOnDueDate(t *testing.T) {
	c := campaign(model.StatusActive, datePtr("2024-03-01"), 7)
	today := date("2024-03-08")

	if !IsReady(c, today) {
		t.Error("IsReady = false on due date, want true")
	}
	overdue, _ := DaysOverdue(c, today)
	if overdue != 0 {
		t.Errorf("DaysOverdue on due date = %d, want 0", overdue)
	}
}

func TestDaysOverdueMonotonic(t *testing.T) {
	c := campaign(model.StatusActive, datePtr("2024-03-01"), 7)
	prev := -1
	today := date("2024-03-08")
	for i := 0; i < 10; i++ {
		overdue, ok := DaysOverdue(c, today)
		if !ok {
			t.Fatal("DaysOverdue not defined")
		}
		if overdue < prev {
			t.Errorf("DaysOverdue decreased: %d after %d", overdue, prev)
		}
		if overdue != i {
			t.Errorf("DaysOverdue on day +%d = %d, want %d", i, overdue, i)
		}
		prev = overdue
		today = today.AddDays(1)
	}
}

func TestInactiveStatusesNeverReadyOrUpcoming(t *testing.T) {
	for _, status := range []model.Status{model.StatusMaintenance, model.StatusLoser} {
		c := campaign(status, datePtr("2024-03-01"), 7)
		today := date("2024-03-10")
		if IsReady(c, today) {
			t.Errorf("IsReady(%s) = true, want false", status)
		}
		if IsUpcoming(c, date("2024-03-05")) {
			t.Errorf("IsUpcoming(%s) = true, want false", status)
		}
		if got := Classify(c, today); got != StateInactive {
			t.Errorf("Classify(%s) = %s, want %s", status, got, StateInactive)
		}
	}
}

func TestNeverScaled(t *testing.T) {
	c := campaign(model.StatusActive, nil, 7)
	today := date("2024-03-10")

	if _, ok := NextDueDate(c); ok {
		t.Error("NextDueDate defined for never-scaled campaign")
	}
	if IsReady(c, today) {
		t.Error("never-scaled campaign is ready")
	}
	if IsUpcoming(c, today) {
		t.Error("never-scaled campaign is upcoming")
	}
	if got := Classify(c, today); got != StateNeverScaled {
		t.Errorf("Classify = %s, want %s", got, StateNeverScaled)
	}
}

func TestIntervalNormalization(t *testing.T) {
	// Interval 0 reads as the default 7.
	c := campaign(model.StatusActive, datePtr("2024-03-01"), 0)
	due, _ := NextDueDate(c)
	if due.String() != "2024-03-08" {
		t.Errorf("NextDueDate with zero interval = %s, want 2024-03-08", due)
	}
}

func TestReadyOrdering(t *testing.T) {
	mk := func(id int, account, name string) *model.Campaign {
		c := campaign(model.StatusActive, datePtr("2024-03-01"), 7)
		c.ID = id
		c.AccountName = account
		c.CampaignName = name
		return c
	}
	campaigns := []*model.Campaign{
		mk(1, "Zeta", "A"),
		mk(2, "Acme", "Z"),
		mk(3, "Acme", "A"),
		mk(4, "Mid", "M"),
	}
	ready := Ready(campaigns, date("2024-03-10"))
	wantIDs := []int{3, 2, 4, 1}
	if len(ready) != len(wantIDs) {
		t.Fatalf("Ready returned %d campaigns, want %d", len(ready), len(wantIDs))
	}
	for i, want := range wantIDs {
		if ready[i].ID != want {
			t.Errorf("Ready[%d].ID = %d, want %d", i, ready[i].ID, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	campaigns := []*model.Campaign{
		campaign(model.StatusActive, datePtr("2024-03-01"), 7),  // ready
		campaign(model.StatusActive, datePtr("2024-03-07"), 7),  // upcoming (due 03-14)
		campaign(model.StatusActive, datePtr("2024-03-10"), 30), // scheduled
		campaign(model.StatusActive, nil, 7),                    // never scaled
		campaign(model.StatusMaintenance, datePtr("2024-03-01"), 7),
		campaign(model.StatusLoser, nil, 7),
	}
	s := Summarize(campaigns, date("2024-03-11"))

	want := Summary{Total: 6, Active: 4, Ready: 1, Upcoming: 1, Scheduled: 1, NeverScaled: 1, Inactive: 2}
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}
}
