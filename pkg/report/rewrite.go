package report

import (
	"fmt"
	"strings"

	"github.com/terrrybug/pyninja/pkg/analysis"
)

// RequirementsFile renders an updated requirements.txt from the analysis
// results: packages with a known stable release are pinned to at least
// that release, everything else keeps a bare name line. Input order is
// preserved.
func RequirementsFile(infos []analysis.PackageInfo) string {
	var b strings.Builder
	for _, info := range infos {
		if info.LatestStableVersion != analysis.Unknown && info.LatestStableVersion != "" {
			fmt.Fprintf(&b, "%s>=%s\n", info.Name, info.LatestStableVersion)
		} else {
			fmt.Fprintf(&b, "%s\n", info.Name)
		}
	}
	return b.String()
}
