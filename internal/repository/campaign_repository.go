package repository

import (
	"database/sql"
	"strings"
	"time"

	appErrors "github.com/unclebandit/scaletracker-backend/internal/errors"
	"github.com/unclebandit/scaletracker-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	List() ([]*model.Campaign, error)
	GetByID(id int) (*model.Campaign, error)
	Create(c *model.Campaign) error
	Update(c *model.Campaign) error
	Delete(id int) error
	MarkScaled(id int, date model.Date) error
	UpdateStatus(id int, status model.Status) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, account_name, campaign_name, launch_date, last_scaled_date,
	notification_interval_days, status, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (*model.Campaign, error) {
	var c model.Campaign
	var lastScaled model.NullDate
	var status string
	err := row.Scan(
		&c.ID, &c.AccountName, &c.CampaignName, &c.LaunchDate, &lastScaled,
		&c.NotificationIntervalDays, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastScaled.Valid {
		d := lastScaled.Date
		c.LastScaledDate = &d
	}
	// Normalization happens on read only; the stored row is left as-is.
	c.Status = model.Status(strings.TrimSpace(status))
	if !model.ValidStatus(c.Status) {
		c.Status = model.StatusActive
	}
	if c.NotificationIntervalDays < 1 {
		c.NotificationIntervalDays = model.DefaultIntervalDays
	}
	return &c, nil
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.StatusActive
	}
	if c.NotificationIntervalDays < 1 {
		c.NotificationIntervalDays = model.DefaultIntervalDays
	}
	var lastScaled model.NullDate
	if c.LastScaledDate != nil {
		lastScaled = model.NullDate{Date: *c.LastScaledDate, Valid: true}
	}
	query := `
		INSERT INTO campaigns (account_name, campaign_name, launch_date, last_scaled_date,
			notification_interval_days, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRow(query,
		c.AccountName, c.CampaignName, c.LaunchDate, lastScaled,
		c.NotificationIntervalDays, c.Status, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	var lastScaled model.NullDate
	if c.LastScaledDate != nil {
		lastScaled = model.NullDate{Date: *c.LastScaledDate, Valid: true}
	}
	query := `
		UPDATE campaigns
		SET account_name=$1, campaign_name=$2, launch_date=$3, last_scaled_date=$4,
			notification_interval_days=$5, status=$6, updated_at=NOW()
		WHERE id=$7
	`
	res, err := r.DB.Exec(query,
		c.AccountName, c.CampaignName, c.LaunchDate, lastScaled,
		c.NotificationIntervalDays, c.Status, c.ID,
	)
	if err != nil {
		return err
	}
	return checkFound(res, c.ID)
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List() ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) Delete(id int) error {
	res, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return checkFound(res, id)
}

func (r *CampaignRepository) MarkScaled(id int, date model.Date) error {
	query := `UPDATE campaigns SET last_scaled_date=$1, updated_at=NOW() WHERE id=$2`
	res, err := r.DB.Exec(query, date, id)
	if err != nil {
		return err
	}
	return checkFound(res, id)
}

func (r *CampaignRepository) UpdateStatus(id int, status model.Status) error {
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2`
	res, err := r.DB.Exec(query, status, id)
	if err != nil {
		return err
	}
	return checkFound(res, id)
}

func checkFound(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
