package report

import (
	"strings"
	"time"
)

const bundleLayout = "2006-01-02_15-04-05"

var filenameReplacer = strings.NewReplacer(
	".", "_",
	":", "_",
	"/", "_",
	"\\", "_",
	" ", "_",
)

// sanitizeFilename maps path separators and other unsafe characters to underscores
func sanitizeFilename(s string) string {
	return filenameReplacer.Replace(s)
}

// bundleName is the report directory name for a report made at t
func bundleName(t time.Time) string {
	return sanitizeFilename("flow_report_" + t.Format(bundleLayout))
}
