package export

import (
	"fmt"
	"path/filepath"
	"time"
)

// Filename returns the dated export path inside dir, e.g.
// fundscope-export-2023-06-14.csv.
func Filename(dir, ext string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("fundscope-export-%s.%s", now.Format(dateLayout), ext))
}
