// internal/model/notification.go
package model

import "time"

// NotificationRecord is one row of the durable notification ledger.
// Account and campaign names are captured at dispatch time so history
// survives campaign deletion or rename. Records are append-only.
type NotificationRecord struct {
	ID           int       `db:"id" json:"id"`
	CampaignID   int       `db:"campaign_id" json:"campaign_id"`
	AccountName  string    `db:"account_name" json:"account_name"`
	CampaignName string    `db:"campaign_name" json:"campaign_name"`
	SentAt       time.Time `db:"sent_at" json:"sent_at"`

	// Current names from the campaigns table, nil when the campaign
	// has since been deleted. Populated only by history reads.
	CurrentAccountName  *string `json:"current_account_name,omitempty"`
	CurrentCampaignName *string `json:"current_campaign_name,omitempty"`
}
