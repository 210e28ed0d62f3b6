// Package diagnostics produces the opt-in textual volume report printed
// when the CLI's debug flag is set, in the spirit of the teacher's
// report package's summary block but scoped to the one-shot facts a
// mounted XDVDFS volume exposes.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/autobrr/xvfs/internal/util"
	"github.com/autobrr/xvfs/internal/volume"
)

// Report renders a short human-readable summary of vol.
func Report(vol *volume.Container) string {
	var b strings.Builder
	fmt.Fprintf(&b, "volume label:   %s\n", vol.Label())
	fmt.Fprintf(&b, "entries:        %s\n", util.FormatNumber(int64(vol.EntryCount())))
	fmt.Fprintf(&b, "image size:     %s\n", util.FormatFileSize(float64(vol.Size()), true))
	fmt.Fprintf(&b, "created:        %s\n", vol.Modified().Format("2006-01-02 15:04:05"))
	return b.String()
}
