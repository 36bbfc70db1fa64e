// internal/readiness/evaluator.go
//
// Pure readiness evaluation over campaign snapshots. No I/O, no
// clocks: "today" is always passed in, so the daily sweep and the UI
// check endpoint see identical answers for the same inputs.
package readiness

import (
	"sort"

	"github.com/unclebandit/scaletracker-backend/internal/model"
)

// UpcomingWindowDays is how far ahead of the due date a campaign is
// flagged as upcoming.
const UpcomingWindowDays = 3

// State classifies one campaign relative to a reference day.
type State string

const (
	// StateReady: active, scaled before, and the next due date has
	// arrived or passed.
	StateReady State = "ready"
	// StateUpcoming: active, due within UpcomingWindowDays.
	StateUpcoming State = "upcoming"
	// StateScheduled: active with a due date further out.
	StateScheduled State = "scheduled"
	// StateNeverScaled: active but never scaled; excluded from
	// readiness until the first scale action is recorded.
	StateNeverScaled State = "never_scaled"
	// StateInactive: status is maintenance or loser.
	StateInactive State = "inactive"
)

// NextDueDate returns lastScaledDate + interval. ok is false when the
// campaign has never been scaled.
func NextDueDate(c *model.Campaign) (model.Date, bool) {
	if c.LastScaledDate == nil {
		return model.Date{}, false
	}
	return c.LastScaledDate.AddDays(c.Interval()), true
}

// IsReady reports whether c is due for its next scale action on today.
func IsReady(c *model.Campaign, today model.Date) bool {
	if c.Status != model.StatusActive {
		return false
	}
	due, ok := NextDueDate(c)
	if !ok {
		return false
	}
	return !due.After(today)
}

// DaysOverdue returns how many days past due c is, floored at zero.
// ok is false when the campaign has never been scaled.
func DaysOverdue(c *model.Campaign, today model.Date) (int, bool) {
	due, ok := NextDueDate(c)
	if !ok {
		return 0, false
	}
	n := due.DaysUntil(today)
	if n < 0 {
		n = 0
	}
	return n, true
}

// DaysUntilDue returns the days remaining until the next due date.
// Zero or negative means due. ok is false when never scaled.
func DaysUntilDue(c *model.Campaign, today model.Date) (int, bool) {
	due, ok := NextDueDate(c)
	if !ok {
		return 0, false
	}
	return today.DaysUntil(due), true
}

// IsUpcoming reports whether c is active and due within the upcoming
// window (exclusive of today).
func IsUpcoming(c *model.Campaign, today model.Date) bool {
	if c.Status != model.StatusActive {
		return false
	}
	n, ok := DaysUntilDue(c, today)
	if !ok {
		return false
	}
	return n > 0 && n <= UpcomingWindowDays
}

// Classify buckets one campaign for a given day.
func Classify(c *model.Campaign, today model.Date) State {
	if c.Status != model.StatusActive {
		return StateInactive
	}
	if c.LastScaledDate == nil {
		return StateNeverScaled
	}
	if IsReady(c, today) {
		return StateReady
	}
	if IsUpcoming(c, today) {
		return StateUpcoming
	}
	return StateScheduled
}

// Ready filters campaigns due on today, ordered by account name then
// campaign name.
func Ready(campaigns []*model.Campaign, today model.Date) []*model.Campaign {
	ready := []*model.Campaign{}
	for _, c := range campaigns {
		if IsReady(c, today) {
			ready = append(ready, c)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].AccountName != ready[j].AccountName {
			return ready[i].AccountName < ready[j].AccountName
		}
		return ready[i].CampaignName < ready[j].CampaignName
	})
	return ready
}

// Summary aggregates classification counts across a campaign set.
type Summary struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Ready       int `json:"ready"`
	Upcoming    int `json:"upcoming"`
	Scheduled   int `json:"scheduled"`
	NeverScaled int `json:"never_scaled"`
	Inactive    int `json:"inactive"`
}

// Summarize counts each campaign exactly once by its Classify bucket.
func Summarize(campaigns []*model.Campaign, today model.Date) Summary {
	s := Summary{Total: len(campaigns)}
	for _, c := range campaigns {
		switch Classify(c, today) {
		case StateReady:
			s.Active++
			s.Ready++
		case StateUpcoming:
			s.Active++
			s.Upcoming++
		case StateScheduled:
			s.Active++
			s.Scheduled++
		case StateNeverScaled:
			s.Active++
			s.NeverScaled++
		case StateInactive:
			s.Inactive++
		}
	}
	return s
}
