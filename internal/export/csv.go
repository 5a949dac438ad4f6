package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/fundscope/internal/analysis"
)

// ToCSV writes one row per NAV point followed by one row per latest
// prediction. The kind column tells them apart.
func ToCSV(data analysis.Data, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"Kind", "Fund", "Date", "NAV", "Predicted", "Actual", "Error"}); err != nil {
		return err
	}

	for _, p := range data.History {
		row := []string{"nav", p.FundCode, p.Date.Format(dateLayout), formatFloat(p.NAV), "", "", ""}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	for _, p := range data.LatestPredictions {
		actual, errStr := "", ""
		if e, ok := p.Error(); ok {
			actual = formatFloat(p.Actual)
			errStr = formatPercent(e)
		}
		row := []string{"prediction", p.FundCode, p.Date.Format(dateLayout), "", formatFloat(p.Predicted), actual, errStr}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

const dateLayout = "2006-01-02"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
