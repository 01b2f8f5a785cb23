package trip

import (
	"strings"
	"time"
	"unicode"
)

// ExportTimeLayout is yyyy_MM_dd_HH_mm_ss.
const ExportTimeLayout = "2006_01_02_15_04_05"

var pathSeparator = strings.NewReplacer("/", "-", `\`, "-")

// ExportName builds {vehicle}_{source}_{destination}_{timestamp}. Each
// whitespace character of source and destination becomes a hyphen; path
// separators become hyphens in every part so the name stays inside the
// export directory.
func ExportName(vehicle, source, destination string, at time.Time) string {
	parts := []string{
		pathSeparator.Replace(vehicle),
		pathSeparator.Replace(hyphenate(source)),
		pathSeparator.Replace(hyphenate(destination)),
		at.Format(ExportTimeLayout),
	}
	return strings.Join(parts, "_")
}

func hyphenate(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, s)
}

// ExportLine renders one coordinate as a line of the export file.
func ExportLine(c Coordinate) string {
	return `lat="` + FormatDegrees(c.Lat) + `" lng="` + FormatDegrees(c.Lng) + `"` + "\n"
}
