package repository

import (
	"database/sql"

	appErrors "github.com/unclebandit/scaletracker-backend/internal/errors"
)

// Well-known settings keys. The Google credential keys feed the
// sheet sink's session; the interval key seeds new campaigns.
const (
	SettingGoogleClientID     = "google_client_id"
	SettingGoogleClientSecret = "google_client_secret"
	SettingGoogleRefreshToken = "google_refresh_token"
	SettingGoogleSheetID      = "google_sheet_id"
	SettingDefaultInterval    = "default_notification_interval_days"
)

type SettingsRepositoryInterface interface {
	All() (map[string]string, error)
	Get(key string) (string, error)
	Set(key, value string) error
}

type SettingsRepository struct {
	DB *sql.DB
}

func (r *SettingsRepository) All() (map[string]string, error) {
	rows, err := r.DB.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.DB.QueryRow(`SELECT value FROM settings WHERE key=$1`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", appErrors.NewSettingNotFound(key)
		}
		return "", err
	}
	return value, nil
}

func (r *SettingsRepository) Set(key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()
	`
	_, err := r.DB.Exec(query, key, value)
	return err
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)
