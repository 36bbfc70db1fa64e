package repository

import (
	"database/sql"
	"time"

	"github.com/unclebandit/scaletracker-backend/internal/model"
)

// HistoryLimit caps how many ledger rows a history read returns.
const HistoryLimit = 100

type NotificationRepositoryInterface interface {
	Append(rec *model.NotificationRecord) error
	History(limit int) ([]*model.NotificationRecord, error)
}

// NotificationRepository is the append-only notification ledger, the
// system of record for dispatched reminders.
type NotificationRepository struct {
	DB *sql.DB
}

func (r *NotificationRepository) Append(rec *model.NotificationRecord) error {
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now()
	}
	query := `
		INSERT INTO notifications_log (campaign_id, account_name, campaign_name, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRow(query, rec.CampaignID, rec.AccountName, rec.CampaignName, rec.SentAt).
		Scan(&rec.ID)
}

// History returns the most recent rows, newest first, joined with the
// current campaign names where the campaign still exists.
func (r *NotificationRepository) History(limit int) ([]*model.NotificationRecord, error) {
	if limit < 1 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	query := `
		SELECT n.id, n.campaign_id, n.account_name, n.campaign_name, n.sent_at,
			c.account_name, c.campaign_name
		FROM notifications_log n
		LEFT JOIN campaigns c ON n.campaign_id = c.id
		ORDER BY n.sent_at DESC, n.id DESC
		LIMIT $1
	`
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*model.NotificationRecord{}
	for rows.Next() {
		var rec model.NotificationRecord
		var curAccount, curCampaign sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.CampaignID, &rec.AccountName, &rec.CampaignName, &rec.SentAt,
			&curAccount, &curCampaign,
		); err != nil {
			return nil, err
		}
		if curAccount.Valid {
			rec.CurrentAccountName = &curAccount.String
		}
		if curCampaign.Valid {
			rec.CurrentCampaignName = &curCampaign.String
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

var _ NotificationRepositoryInterface = (*NotificationRepository)(nil)
