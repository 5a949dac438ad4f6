package tui

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/fundscope/internal/analysis"
	"github.com/sadopc/fundscope/internal/importer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewAnalysis viewState = iota
	viewFunds
	viewSettings
)

var viewNames = []string{"Analysis", "Funds", "Settings"}

// --- Messages ---

// analysisDataMsg carries a fetch result tagged with the binding generation
// that requested it.
type analysisDataMsg struct {
	gen  uint64
	data analysis.Data
	err  error
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	result importer.Result
	err    error
}

// --- Helpers ---

func formatNAV(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

func formatAbsPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", math.Abs(v)*100)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
