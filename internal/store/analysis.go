package store

import (
	"context"
	"time"

	"github.com/sadopc/fundscope/internal/analysis"
	"golang.org/x/sync/errgroup"
)

// FetchAnalysis loads the full analysis dataset. The queries run
// concurrently; the first failure cancels the rest.
func (s *Store) FetchAnalysis(ctx context.Context) (analysis.Data, error) {
	var data analysis.Data
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		points, err := s.ListNAVHistory(ctx, time.Time{}, time.Time{})
		if err != nil {
			return err
		}
		data.History = points
		return nil
	})

	g.Go(func() error {
		preds, err := s.LatestPredictions(ctx)
		if err != nil {
			return err
		}
		data.LatestPredictions = preds
		return nil
	})

	g.Go(func() error {
		shares, err := s.FundTypeShares(ctx)
		if err != nil {
			return err
		}
		data.FundTypes = shares
		return nil
	})

	g.Go(func() error {
		errs, err := s.PredictionErrors(ctx)
		if err != nil {
			return err
		}
		data.Errors = errs
		return nil
	})

	if err := g.Wait(); err != nil {
		return analysis.Data{}, err
	}
	return data, nil
}

var _ analysis.Source = (*Store)(nil)
