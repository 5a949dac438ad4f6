package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/fundscope/internal/analysis"
)

// AddNAV records a fund's NAV for a day, replacing any earlier value.
func (s *Store) AddNAV(code string, date time.Time, nav float64) error {
	_, err := s.db.Exec(
		`INSERT INTO nav_history (fund_code, date, nav) VALUES (?, ?, ?)
		 ON CONFLICT(fund_code, date) DO UPDATE SET nav = excluded.nav`,
		code, date.Format(dateLayout), nav,
	)
	if err != nil {
		return fmt.Errorf("add nav %s %s: %w", code, date.Format(dateLayout), err)
	}
	return nil
}

// ListNAVHistory returns NAV points of active funds ordered by date. Zero
// bounds are open.
func (s *Store) ListNAVHistory(ctx context.Context, from, to time.Time) ([]analysis.NAVPoint, error) {
	query := `SELECT n.fund_code, n.date, n.nav
		FROM nav_history n
		JOIN funds f ON f.code = n.fund_code
		WHERE f.archived = 0`
	var args []any
	if !from.IsZero() {
		query += ` AND n.date >= ?`
		args = append(args, from.Format(dateLayout))
	}
	if !to.IsZero() {
		query += ` AND n.date <= ?`
		args = append(args, to.Format(dateLayout))
	}
	query += ` ORDER BY n.date, n.fund_code`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list nav history: %w", err)
	}
	defer rows.Close()

	points := []analysis.NAVPoint{}
	for rows.Next() {
		var p analysis.NAVPoint
		var date string
		if err := rows.Scan(&p.FundCode, &date, &p.NAV); err != nil {
			return nil, err
		}
		p.Date = parseDay(date)
		points = append(points, p)
	}
	return points, rows.Err()
}
