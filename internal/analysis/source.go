package analysis

import "context"

// Source loads the analysis dataset.
type Source interface {
	FetchAnalysis(ctx context.Context) (Data, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Data, error)

func (f SourceFunc) FetchAnalysis(ctx context.Context) (Data, error) {
	return f(ctx)
}
