package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/fundscope/internal/analysis"
)

type jsonExport struct {
	ExportedAt  string           `json:"exported_at"`
	History     []jsonNAV        `json:"history"`
	Predictions []jsonPrediction `json:"predictions"`
	FundTypes   []jsonFundType   `json:"fund_types"`
}

type jsonNAV struct {
	Fund string  `json:"fund"`
	Date string  `json:"date"`
	NAV  float64 `json:"nav"`
}

type jsonPrediction struct {
	Fund      string   `json:"fund"`
	Name      string   `json:"name,omitempty"`
	Date      string   `json:"date"`
	Predicted float64  `json:"predicted"`
	Actual    *float64 `json:"actual,omitempty"`
	Error     *float64 `json:"error,omitempty"`
}

type jsonFundType struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Count   int    `json:"count"`
}

func ToJSON(data analysis.Data, path string) error {
	export := jsonExport{
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		History:     []jsonNAV{},
		Predictions: []jsonPrediction{},
		FundTypes:   []jsonFundType{},
	}

	for _, p := range data.History {
		export.History = append(export.History, jsonNAV{
			Fund: p.FundCode,
			Date: p.Date.Format(dateLayout),
			NAV:  p.NAV,
		})
	}

	for _, p := range data.LatestPredictions {
		jp := jsonPrediction{
			Fund:      p.FundCode,
			Name:      p.FundName,
			Date:      p.Date.Format(dateLayout),
			Predicted: p.Predicted,
		}
		if e, ok := p.Error(); ok {
			actual := p.Actual
			jp.Actual = &actual
			jp.Error = &e
		}
		export.Predictions = append(export.Predictions, jp)
	}

	for _, s := range data.FundTypes {
		export.FundTypes = append(export.FundTypes, jsonFundType{
			Type:    s.FundType,
			Channel: string(s.Channel),
			Count:   s.Count,
		})
	}

	out, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
