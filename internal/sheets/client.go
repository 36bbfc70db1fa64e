// internal/sheets/client.go
//
// Best-effort mirror of the notification ledger to a Google Sheet.
// The sheet is a convenience copy; callers must never let a failure
// here affect the durable ledger write.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com"
	spreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"

	// The ledger mirror occupies columns A:C. A1:C1 doubles as the
	// header-presence probe.
	dataRange   = "A1:C1"
	headerRange = "A1:C2"
)

var headerRow = []interface{}{"Timestamp", "Account Name", "Campaign Name"}

// ErrNotConfigured means credentials or the target sheet id are
// missing from settings.
var ErrNotConfigured = errors.New("google sheets credentials or sheet id not configured")

// AuthError means the cached session's credentials were rejected.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("google sheets auth failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// TransientError covers network trouble, rate limits and upstream 5xx.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("google sheets unavailable: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// Credentials is the externally stored OAuth material plus the target
// sheet, read lazily on first use.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	SheetID      string
}

// CredentialSource supplies Credentials on demand, typically backed
// by the settings repository.
type CredentialSource func() (Credentials, error)

// session is the transient process-held auth state. Rebuilt lazily,
// dropped on auth failure.
type session struct {
	http    *http.Client
	sheetID string
}

// Client talks to the Sheets v4 values API through an oauth2-derived
// http client. The session is shared by all dispatches in the
// process; rebuilds are coalesced under mu.
type Client struct {
	creds   CredentialSource
	timeout time.Duration

	mu   sync.Mutex
	sess *session

	// test seams
	baseURL  string
	tokenURL string
}

// NewClient creates a sheet sink over the given credential source.
// timeout bounds every AppendRow call end to end.
func NewClient(creds CredentialSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		creds:   creds,
		timeout: timeout,
		baseURL: defaultBaseURL,
	}
}

// Invalidate drops the cached session so the next call rebuilds it.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.sess = nil
	c.mu.Unlock()
}

// ensureSession returns the cached session or builds one from fresh
// credentials. Only one build runs at a time; concurrent callers wait
// on the mutex and reuse the result.
func (c *Client) ensureSession() (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil {
		return c.sess, nil
	}

	creds, err := c.creds()
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("load credentials: %w", err)}
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" || creds.SheetID == "" {
		return nil, ErrNotConfigured
	}

	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       []string{spreadsheetScope},
		Endpoint:     google.Endpoint,
	}
	if c.tokenURL != "" {
		cfg.Endpoint = oauth2.Endpoint{TokenURL: c.tokenURL}
	}

	// Background context: the token source outlives any single
	// request; per-call deadlines come from the request context.
	src := cfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: creds.RefreshToken})
	c.sess = &session{
		http:    oauth2.NewClient(context.Background(), src),
		sheetID: creds.SheetID,
	}
	return c.sess, nil
}

// AppendRow mirrors one (timestamp, account, campaign) triple to the
// sheet and returns the number of cells written. On the first append
// of a sheet's lifetime the header row is written together with the
// data row in one update, so a crash can never leave one without the
// other. A rejected session is rebuilt and the append retried once.
func (c *Client) AppendRow(ctx context.Context, ts time.Time, accountName, campaignName string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cells, err := c.appendOnce(ctx, ts, accountName, campaignName)
	var authErr *AuthError
	if errors.As(err, &authErr) {
		c.Invalidate()
		cells, err = c.appendOnce(ctx, ts, accountName, campaignName)
	}
	return cells, err
}

func (c *Client) appendOnce(ctx context.Context, ts time.Time, accountName, campaignName string) (int, error) {
	sess, err := c.ensureSession()
	if err != nil {
		return 0, err
	}

	row := []interface{}{ts.UTC().Format(time.RFC3339), accountName, campaignName}

	empty, err := c.rangeEmpty(ctx, sess)
	if err != nil {
		return 0, err
	}

	if empty {
		// Header bootstrap: header and first data row in a single
		// atomic write.
		return c.updateValues(ctx, sess, headerRange, [][]interface{}{headerRow, row})
	}
	return c.appendValues(ctx, sess, row)
}

func (c *Client) rangeEmpty(ctx context.Context, sess *session) (bool, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s", c.baseURL, url.PathEscape(sess.sheetID), dataRange)
	body, err := c.do(ctx, sess, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	var resp struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, &TransientError{Err: fmt.Errorf("decode values response: %w", err)}
	}
	return len(resp.Values) == 0, nil
}

func (c *Client) updateValues(ctx context.Context, sess *session, valueRange string, values [][]interface{}) (int, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		c.baseURL, url.PathEscape(sess.sheetID), valueRange)
	payload := map[string]interface{}{"range": valueRange, "values": values}
	body, err := c.do(ctx, sess, http.MethodPut, u, payload)
	if err != nil {
		return 0, err
	}
	var resp struct {
		UpdatedCells int `json:"updatedCells"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, &TransientError{Err: fmt.Errorf("decode update response: %w", err)}
	}
	return resp.UpdatedCells, nil
}

func (c *Client) appendValues(ctx context.Context, sess *session, row []interface{}) (int, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED",
		c.baseURL, url.PathEscape(sess.sheetID), dataRange)
	payload := map[string]interface{}{"values": [][]interface{}{row}}
	body, err := c.do(ctx, sess, http.MethodPost, u, payload)
	if err != nil {
		return 0, err
	}
	var resp struct {
		Updates struct {
			UpdatedCells int `json:"updatedCells"`
		} `json:"updates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, &TransientError{Err: fmt.Errorf("decode append response: %w", err)}
	}
	return resp.Updates.UpdatedCells, nil
}

func (c *Client) do(ctx context.Context, sess *session, method, url string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &TransientError{Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sess.http.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, &AuthError{Err: retrieveErr}
		}
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Err: fmt.Errorf("sheets API %d: %s", resp.StatusCode, string(body))}
	case resp.StatusCode >= 400:
		return nil, &TransientError{Err: fmt.Errorf("sheets API %d: %s", resp.StatusCode, string(body))}
	}
	return body, nil
}
