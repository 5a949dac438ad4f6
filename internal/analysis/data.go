package analysis

import (
	"math"
	"time"
)

// Data is the dataset the analysis view renders.
type Data struct {
	History           []NAVPoint
	LatestPredictions []Prediction
	FundTypes         []FundTypeShare
	Errors            []ErrorPoint
}

// NAVPoint is one net asset value observation.
type NAVPoint struct {
	FundCode string
	Date     time.Time
	NAV      float64
}

// Prediction is a predicted NAV and, once published, the actual value.
type Prediction struct {
	FundCode  string
	FundName  string
	Date      time.Time
	Predicted float64
	Actual    float64
}

// Error returns the relative prediction error. It reports false until an
// actual value is known.
func (p Prediction) Error() (float64, bool) {
	if p.Actual == 0 {
		return 0, false
	}
	return (p.Predicted - p.Actual) / p.Actual, true
}

// FundTypeShare counts funds of one type sold through one channel.
type FundTypeShare struct {
	FundType string
	Channel  SalesType
	Count    int
}

// ErrorPoint is a settled prediction error for one fund on one day.
type ErrorPoint struct {
	FundCode string
	Date     time.Time
	Error    float64
}

func (e ErrorPoint) Abs() float64 { return math.Abs(e.Error) }
