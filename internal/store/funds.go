package store

import (
	"fmt"
	"time"
)

// UpsertFund creates the fund or updates its name, type and channel.
func (s *Store) UpsertFund(code, name, fundType, channel string) (*Fund, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO funds (code, name, fund_type, channel, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			fund_type = excluded.fund_type,
			channel = excluded.channel,
			archived = 0,
			updated_at = excluded.updated_at`,
		code, name, fundType, channel, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert fund %q: %w", code, err)
	}
	return s.GetFund(code)
}

func (s *Store) GetFund(code string) (*Fund, error) {
	f := &Fund{}
	var createdAt, updatedAt string
	var archived int
	err := s.db.QueryRow(
		`SELECT code, name, fund_type, channel, archived, created_at, updated_at FROM funds WHERE code = ?`, code,
	).Scan(&f.Code, &f.Name, &f.FundType, &f.Channel, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get fund %q: %w", code, err)
	}
	f.Archived = archived == 1
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return f, nil
}

func (s *Store) ListFunds(includeArchived bool) ([]Fund, error) {
	query := `SELECT code, name, fund_type, channel, archived, created_at, updated_at FROM funds`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY code`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list funds: %w", err)
	}
	defer rows.Close()

	var funds []Fund
	for rows.Next() {
		var f Fund
		var createdAt, updatedAt string
		var archived int
		if err := rows.Scan(&f.Code, &f.Name, &f.FundType, &f.Channel, &archived, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		f.Archived = archived == 1
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

// ArchiveFund hides a fund from the analysis without dropping its history.
func (s *Store) ArchiveFund(code string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(
		`UPDATE funds SET archived = 1, updated_at = ? WHERE code = ?`, now, code,
	); err != nil {
		return fmt.Errorf("archive fund %q: %w", code, err)
	}
	return nil
}
