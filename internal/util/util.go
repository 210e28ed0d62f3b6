// Package util holds small formatting helpers shared by the CLI-facing
// output, in the spirit of the teacher's report-formatting helpers but
// trimmed to what a read-only mount tool's diagnostics actually print.
package util

import (
	"fmt"
	"math"
	"strconv"
)

// FormatFileSize renders size in the largest unit that keeps the value
// above 1 when human is true, otherwise always in bytes.
func FormatFileSize(size float64, human bool) string {
	if size <= 0 {
		return "0"
	}
	units := []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	group := 0
	if human {
		group = int(math.Log10(size) / math.Log10(1024))
		if group < 0 {
			group = 0
		}
		if group >= len(units) {
			group = len(units) - 1
		}
	}
	return fmt.Sprintf("%.2f %s", size/math.Pow(1024, float64(group)), units[group])
}

// FormatNumber formats an integer with thousands separators.
func FormatNumber(n int64) string {
	if n == 0 {
		return "0"
	}
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return sign + s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, byte(c))
	}
	return sign + string(out)
}
