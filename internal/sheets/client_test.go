package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSheet struct {
	hasHeader   bool
	requests    int32
	getCalls    int32
	updateCalls int32
	appendCalls int32
	lastUpdate  [][]interface{}
	failStatus  int // non-zero: every values call fails with this status
}

func (f *fakeSheet) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.requests, 1)
		if f.failStatus != 0 {
			http.Error(w, `{"error":{"message":"boom"}}`, f.failStatus)
			return
		}
		switch {
		case r.Method == http.MethodGet:
			atomic.AddInt32(&f.getCalls, 1)
			resp := map[string]interface{}{}
			if f.hasHeader {
				resp["values"] = [][]interface{}{{"Timestamp", "Account Name", "Campaign Name"}}
			}
			json.NewEncoder(w).Encode(resp)
		case r.Method == http.MethodPut:
			atomic.AddInt32(&f.updateCalls, 1)
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.lastUpdate = body.Values
			f.hasHeader = true
			cells := 0
			for _, row := range body.Values {
				cells += len(row)
			}
			json.NewEncoder(w).Encode(map[string]int{"updatedCells": cells})
		case strings.Contains(r.URL.Path, ":append") || strings.HasSuffix(r.URL.RawPath, ":append"):
			atomic.AddInt32(&f.appendCalls, 1)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"updates": map[string]int{"updatedCells": 3},
			})
		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
		}
	}
}

func testClient(t *testing.T, sheet *fakeSheet) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(sheet.handler())
	t.Cleanup(srv.Close)

	c := NewClient(nil, 5*time.Second)
	c.baseURL = srv.URL
	c.sess = &session{http: srv.Client(), sheetID: "sheet-1"}
	return c, srv
}

func TestAppendRowHeaderBootstrap(t *testing.T) {
	sheet := &fakeSheet{}
	c, _ := testClient(t, sheet)

	cells, err := c.AppendRow(context.Background(), time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), "Acme", "Spring Push")
	if err != nil {
		t.Fatalf("AppendRow error: %v", err)
	}
	// Header plus data row written together in one update.
	if cells != 6 {
		t.Errorf("cells = %d, want 6", cells)
	}
	if sheet.updateCalls != 1 || sheet.appendCalls != 0 {
		t.Errorf("updateCalls=%d appendCalls=%d, want 1/0", sheet.updateCalls, sheet.appendCalls)
	}
	if len(sheet.lastUpdate) != 2 {
		t.Fatalf("update wrote %d rows, want header+data", len(sheet.lastUpdate))
	}
	if sheet.lastUpdate[0][0] != "Timestamp" {
		t.Errorf("first row = %v, want header", sheet.lastUpdate[0])
	}
	if sheet.lastUpdate[1][1] != "Acme" || sheet.lastUpdate[1][2] != "Spring Push" {
		t.Errorf("data row = %v", sheet.lastUpdate[1])
	}
}

func TestAppendRowSkipsHeaderWhenPresent(t *testing.T) {
	sheet := &fakeSheet{hasHeader: true}
	c, _ := testClient(t, sheet)

	for i := 0; i < 2; i++ {
		cells, err := c.AppendRow(context.Background(), time.Now(), "Acme", "Spring Push")
		if err != nil {
			t.Fatalf("AppendRow #%d error: %v", i+1, err)
		}
		if cells != 3 {
			t.Errorf("cells = %d, want 3", cells)
		}
	}
	if sheet.updateCalls != 0 {
		t.Errorf("header rewritten %d times, want 0", sheet.updateCalls)
	}
	if sheet.appendCalls != 2 {
		t.Errorf("appendCalls = %d, want 2", sheet.appendCalls)
	}
}

func TestAppendRowNotConfigured(t *testing.T) {
	c := NewClient(func() (Credentials, error) {
		return Credentials{}, nil
	}, time.Second)

	_, err := c.AppendRow(context.Background(), time.Now(), "Acme", "X")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestAppendRowAuthErrorInvalidatesSession(t *testing.T) {
	sheet := &fakeSheet{failStatus: http.StatusUnauthorized}
	c, srv := testClient(t, sheet)

	// Rebuild after invalidation lands on the same test server with
	// credentials that are still rejected.
	c.creds = func() (Credentials, error) {
		return Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "rt", SheetID: "sheet-1"}, nil
	}
	c.tokenURL = srv.URL + "/token"

	_, err := c.AppendRow(context.Background(), time.Now(), "Acme", "X")

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthError", err)
	}
	// First rejected values call plus the retry's token fetch on a
	// rebuilt session: the retry-once path ran, then gave up.
	if sheet.requests < 2 {
		t.Errorf("requests = %d, want at least 2 (original call + rebuilt retry)", sheet.requests)
	}
}

func TestAppendRowTransientError(t *testing.T) {
	sheet := &fakeSheet{failStatus: http.StatusServiceUnavailable}
	c, _ := testClient(t, sheet)

	_, err := c.AppendRow(context.Background(), time.Now(), "Acme", "X")

	var transient *TransientError
	if !errors.As(err, &transient) {
		t.Errorf("err = %v, want TransientError", err)
	}
}
