package archio

import (
	"strings"

	"golang.org/x/text/language"
)

// langMap covers language names that do not parse as BCP 47 tags.
var langMap = map[string]string{
	"english":    "eng",
	"spanish":    "spa",
	"french":     "fra",
	"german":     "deu",
	"portuguese": "por",
	"dutch":      "nld",
	"italian":    "ita",
	"russian":    "rus",
	"chinese":    "zho",
	"japanese":   "jpn",
}

// langCode normalizes a user-supplied language to ISO 639-3 where
// possible. EML metadata defaults to English.
func langCode(name string) string {
	if name == "" {
		return "eng"
	}
	l := strings.ToLower(strings.TrimSpace(name))
	tag, err := language.Parse(l)
	if err == nil {
		base, conf := tag.Base()
		if conf != language.No {
			return base.ISO3()
		}
	}
	if iso, ok := langMap[l]; ok {
		return iso
	}
	return "eng"
}
