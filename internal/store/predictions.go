package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/fundscope/internal/analysis"
)

// AddPrediction records a predicted NAV. actual is nil until published.
func (s *Store) AddPrediction(code string, date time.Time, predicted float64, actual *float64) error {
	_, err := s.db.Exec(
		`INSERT INTO predictions (fund_code, date, predicted, actual) VALUES (?, ?, ?, ?)
		 ON CONFLICT(fund_code, date) DO UPDATE SET predicted = excluded.predicted, actual = excluded.actual`,
		code, date.Format(dateLayout), predicted, actual,
	)
	if err != nil {
		return fmt.Errorf("add prediction %s %s: %w", code, date.Format(dateLayout), err)
	}
	return nil
}

// SetActual publishes the actual NAV for an existing prediction.
func (s *Store) SetActual(code string, date time.Time, actual float64) error {
	res, err := s.db.Exec(
		`UPDATE predictions SET actual = ? WHERE fund_code = ? AND date = ?`,
		actual, code, date.Format(dateLayout),
	)
	if err != nil {
		return fmt.Errorf("set actual: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set actual %s %s: %w", code, date.Format(dateLayout), sql.ErrNoRows)
	}
	return nil
}

// LatestPredictions returns each active fund's most recent prediction.
func (s *Store) LatestPredictions(ctx context.Context) ([]analysis.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.fund_code, f.name, p.date, p.predicted, p.actual
		FROM predictions p
		JOIN funds f ON f.code = p.fund_code
		WHERE f.archived = 0
		  AND p.date = (SELECT MAX(date) FROM predictions WHERE fund_code = p.fund_code)
		ORDER BY p.fund_code`)
	if err != nil {
		return nil, fmt.Errorf("latest predictions: %w", err)
	}
	defer rows.Close()

	preds := []analysis.Prediction{}
	for rows.Next() {
		var p analysis.Prediction
		var date string
		var actual sql.NullFloat64
		if err := rows.Scan(&p.FundCode, &p.FundName, &date, &p.Predicted, &actual); err != nil {
			return nil, err
		}
		p.Date = parseDay(date)
		if actual.Valid {
			p.Actual = actual.Float64
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

// PredictionErrors returns the relative error of every settled prediction
// in date order.
func (s *Store) PredictionErrors(ctx context.Context) ([]analysis.ErrorPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.fund_code, p.date, p.predicted, p.actual
		FROM predictions p
		JOIN funds f ON f.code = p.fund_code
		WHERE f.archived = 0 AND p.actual IS NOT NULL AND p.actual != 0
		ORDER BY p.date, p.fund_code`)
	if err != nil {
		return nil, fmt.Errorf("prediction errors: %w", err)
	}
	defer rows.Close()

	points := []analysis.ErrorPoint{}
	for rows.Next() {
		var p analysis.Prediction
		var date string
		if err := rows.Scan(&p.FundCode, &date, &p.Predicted, &p.Actual); err != nil {
			return nil, err
		}
		p.Date = parseDay(date)
		e, ok := p.Error()
		if !ok {
			continue
		}
		points = append(points, analysis.ErrorPoint{FundCode: p.FundCode, Date: p.Date, Error: e})
	}
	return points, rows.Err()
}

// FundTypeShares counts active funds per type and sales channel.
func (s *Store) FundTypeShares(ctx context.Context) ([]analysis.FundTypeShare, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fund_type, channel, COUNT(*)
		FROM funds
		WHERE archived = 0
		GROUP BY fund_type, channel
		ORDER BY fund_type, channel`)
	if err != nil {
		return nil, fmt.Errorf("fund type shares: %w", err)
	}
	defer rows.Close()

	shares := []analysis.FundTypeShare{}
	for rows.Next() {
		var sh analysis.FundTypeShare
		var channel string
		if err := rows.Scan(&sh.FundType, &channel, &sh.Count); err != nil {
			return nil, err
		}
		sh.Channel = analysis.SalesType(channel)
		shares = append(shares, sh)
	}
	return shares, rows.Err()
}
