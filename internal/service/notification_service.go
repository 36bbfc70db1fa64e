// internal/service/notification_service.go
package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	appErrors "github.com/unclebandit/scaletracker-backend/internal/errors"
	"github.com/unclebandit/scaletracker-backend/internal/events"
	"github.com/unclebandit/scaletracker-backend/internal/model"
	"github.com/unclebandit/scaletracker-backend/internal/readiness"
	"github.com/unclebandit/scaletracker-backend/internal/sheets"
)

// CampaignSource is the campaign reads the dispatcher needs.
type CampaignSource interface {
	List() ([]*model.Campaign, error)
	GetByID(id int) (*model.Campaign, error)
}

// Ledger is the durable notification record store.
type Ledger interface {
	Append(rec *model.NotificationRecord) error
}

// SheetSink mirrors ledger rows to the external spreadsheet.
type SheetSink interface {
	AppendRow(ctx context.Context, ts time.Time, accountName, campaignName string) (int, error)
}

// NotificationService performs the two-phase dispatch: a mandatory
// ledger append, then a best-effort sheet push. The sheet never gets
// a row the ledger doesn't have, and a sheet failure never reverses
// or hides a ledger write.
type NotificationService struct {
	Campaigns CampaignSource
	Ledger    Ledger
	Sink      SheetSink
	Events    events.Publisher // optional fan-out, may be nil

	// Location defines which calendar day "today" is; defaults to
	// the process-local zone. Now is injectable for tests.
	Location *time.Location
	Now      func() time.Time
}

// DispatchResult is the outcome for one campaign. Logged and
// SheetSynced succeed or fail independently.
type DispatchResult struct {
	CampaignID  int    `json:"campaign_id"`
	Account     string `json:"account,omitempty"`
	Campaign    string `json:"campaign,omitempty"`
	Logged      bool   `json:"logged"`
	SheetSynced bool   `json:"sheet_synced"`
	Note        string `json:"note,omitempty"`
	Error       string `json:"error,omitempty"`

	Err error `json:"-"`
}

// SweepOutcome aggregates one pass over all campaigns.
type SweepOutcome struct {
	Today       model.Date       `json:"today"`
	Checked     int              `json:"checked"`
	Ready       int              `json:"ready"`
	Logged      int              `json:"logged"`
	SheetSynced int              `json:"sheet_synced"`
	Failed      int              `json:"failed"`
	Results     []DispatchResult `json:"results"`
}

func (s *NotificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CurrentDay returns today as a calendar day in the service's zone.
func (s *NotificationService) CurrentDay() model.Date {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return model.DateOf(s.now().In(loc))
}

// Dispatch sends one reminder for c. Phase 1 (ledger) failing aborts
// the dispatch with a PersistenceError in Err. Phase 2 (sheet) and
// the event fan-out are best effort and only ever set Note.
func (s *NotificationService) Dispatch(ctx context.Context, c *model.Campaign) DispatchResult {
	res := DispatchResult{
		CampaignID: c.ID,
		Account:    c.AccountName,
		Campaign:   c.CampaignName,
	}

	rec := &model.NotificationRecord{
		CampaignID:   c.ID,
		AccountName:  c.AccountName,
		CampaignName: c.CampaignName,
		SentAt:       s.now(),
	}
	if err := s.Ledger.Append(rec); err != nil {
		perr := appErrors.NewPersistence("append notification record", err)
		res.Err = perr
		res.Error = perr.Error()
		return res
	}
	res.Logged = true

	if s.Sink == nil {
		res.Note = "sink not configured"
	} else if _, err := s.Sink.AppendRow(ctx, rec.SentAt, c.AccountName, c.CampaignName); err != nil {
		res.Note = sinkNote(err)
		log.Printf("[Dispatch] sheet sync skipped for campaign %d (%s): %v", c.ID, c.CampaignName, err)
	} else {
		res.SheetSynced = true
	}

	if s.Events != nil {
		ev := events.ReminderEvent{
			SweepID:      sweepIDFrom(ctx),
			CampaignID:   c.ID,
			AccountName:  c.AccountName,
			CampaignName: c.CampaignName,
			SentAt:       rec.SentAt,
		}
		if err := s.Events.ReminderSent(ev); err != nil {
			log.Printf("[Dispatch] reminder event dropped for campaign %d: %v", c.ID, err)
		}
	}

	return res
}

// DispatchByID resolves the campaign and dispatches one reminder.
// Returns the campaign lookup error untouched so callers can map
// not-found to 404.
func (s *NotificationService) DispatchByID(ctx context.Context, id int) (DispatchResult, error) {
	c, err := s.Campaigns.GetByID(id)
	if err != nil {
		return DispatchResult{}, err
	}
	return s.Dispatch(ctx, c), nil
}

// DispatchAllReady evaluates every campaign against today and
// dispatches each ready one concurrently. Campaigns are independent:
// one failed ledger append never blocks another campaign's dispatch.
// Only the initial campaign fetch can fail the sweep as a whole.
func (s *NotificationService) DispatchAllReady(ctx context.Context, today model.Date) (*SweepOutcome, error) {
	campaigns, err := s.Campaigns.List()
	if err != nil {
		return nil, appErrors.NewPersistence("list campaigns", err)
	}

	ready := readiness.Ready(campaigns, today)
	results := make([]DispatchResult, len(ready))

	var wg sync.WaitGroup
	for i, c := range ready {
		wg.Add(1)
		go func(i int, c *model.Campaign) {
			defer wg.Done()
			results[i] = s.Dispatch(ctx, c)
		}(i, c)
	}
	wg.Wait()

	outcome := &SweepOutcome{
		Today:   today,
		Checked: len(campaigns),
		Ready:   len(ready),
		Results: results,
	}
	for _, r := range results {
		if r.Logged {
			outcome.Logged++
		}
		if r.SheetSynced {
			outcome.SheetSynced++
		}
		if r.Err != nil {
			outcome.Failed++
		}
	}
	return outcome, nil
}

// ReadyForScaling lists campaigns due today, ordered by account then
// campaign name.
func (s *NotificationService) ReadyForScaling() ([]*model.Campaign, error) {
	campaigns, err := s.Campaigns.List()
	if err != nil {
		return nil, err
	}
	return readiness.Ready(campaigns, s.CurrentDay()), nil
}

// Summary classifies all campaigns for today's dashboard stats.
func (s *NotificationService) Summary() (readiness.Summary, error) {
	campaigns, err := s.Campaigns.List()
	if err != nil {
		return readiness.Summary{}, err
	}
	return readiness.Summarize(campaigns, s.CurrentDay()), nil
}

func sinkNote(err error) string {
	if errors.Is(err, sheets.ErrNotConfigured) {
		return "sink not configured"
	}
	return "sink unavailable"
}

type sweepIDKey struct{}

// WithSweepID tags ctx with the sweep run id for event correlation.
func WithSweepID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sweepIDKey{}, id)
}

func sweepIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sweepIDKey{}).(string)
	return id
}
