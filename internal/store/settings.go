package store

import (
	"fmt"
	"strconv"
	"time"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Preferences are the settings the analysis view reads on mount.
type Preferences struct {
	DefaultPreset    string
	DefaultSalesType string
	WeekStart        string
	FetchTimeout     time.Duration
}

// LoadPreferences reads the view preferences, falling back to the seeded
// defaults for missing or malformed values.
func (s *Store) LoadPreferences() Preferences {
	p := Preferences{
		DefaultPreset:    s.settingOr("default_preset", "year"),
		DefaultSalesType: s.settingOr("default_sales_type", "all"),
		WeekStart:        s.settingOr("week_start", "monday"),
		FetchTimeout:     10 * time.Second,
	}
	if secs, err := strconv.Atoi(s.settingOr("fetch_timeout", "10")); err == nil && secs > 0 {
		p.FetchTimeout = time.Duration(secs) * time.Second
	}
	return p
}

func (s *Store) SavePreferences(p Preferences) error {
	values := []Setting{
		{Key: "default_preset", Value: p.DefaultPreset},
		{Key: "default_sales_type", Value: p.DefaultSalesType},
		{Key: "week_start", Value: p.WeekStart},
		{Key: "fetch_timeout", Value: strconv.Itoa(int(p.FetchTimeout / time.Second))},
	}
	for _, v := range values {
		if err := s.SetSetting(v.Key, v.Value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) settingOr(key, fallback string) string {
	v, err := s.GetSetting(key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}
