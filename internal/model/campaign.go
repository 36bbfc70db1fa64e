// internal/model/campaign.go
package model

import "time"

// Status is the lifecycle state of a campaign. Only active campaigns
// participate in readiness checks.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusLoser       Status = "loser"
)

// DefaultIntervalDays is used whenever a campaign has no usable
// notification interval.
const DefaultIntervalDays = 7

// ValidStatus reports whether s is a known campaign status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusLoser:
		return true
	}
	return false
}

type Campaign struct {
	ID                       int        `db:"id" json:"id"`
	AccountName              string     `db:"account_name" json:"account_name"`
	CampaignName             string     `db:"campaign_name" json:"campaign_name"`
	LaunchDate               Date       `db:"launch_date" json:"launch_date"`
	LastScaledDate           *Date      `db:"last_scaled_date" json:"last_scaled_date,omitempty"`
	NotificationIntervalDays int        `db:"notification_interval_days" json:"notification_interval_days"`
	Status                   Status     `db:"status" json:"status"`
	CreatedAt                time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Interval returns the notification interval in days, normalized to
// DefaultIntervalDays when the stored value is missing or non-positive.
// The stored row is never mutated by this.
func (c *Campaign) Interval() int {
	if c.NotificationIntervalDays < 1 {
		return DefaultIntervalDays
	}
	return c.NotificationIntervalDays
}
