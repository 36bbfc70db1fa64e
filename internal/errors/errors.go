// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrSettingNotFound reports a missing settings key.
type ErrSettingNotFound struct {
	Key string
}

func (e *ErrSettingNotFound) Error() string {
	return fmt.Sprintf("setting %q not found", e.Key)
}

func NewSettingNotFound(key string) error {
	return &ErrSettingNotFound{Key: key}
}

// ValidationError reports caller-supplied input that cannot be used.
// Surfaced as a 4xx by the HTTP layer.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a failed write to the durable stores. Fatal
// for the single dispatch it belongs to; never aborts a whole sweep.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// SinkUnavailableError wraps any failure of the external sheet sink:
// missing configuration, auth failure, or transient network trouble.
// Always non-fatal; the dispatcher downgrades it to a note.
type SinkUnavailableError struct {
	Reason string
	Err    error
}

func (e *SinkUnavailableError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *SinkUnavailableError) Unwrap() error { return e.Err }

func NewSinkUnavailable(reason string, err error) error {
	return &SinkUnavailableError{Reason: reason, Err: err}
}

// IsNotFound reports whether err is a campaign or setting not-found.
func IsNotFound(err error) bool {
	var c *ErrCampaignNotFound
	var s *ErrSettingNotFound
	return errors.As(err, &c) || errors.As(err, &s)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsSinkUnavailable reports whether err is a SinkUnavailableError.
func IsSinkUnavailable(err error) bool {
	var s *SinkUnavailableError
	return errors.As(err, &s)
}
