package ocr

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// detectLanguage identifies the dominant language of the combined document
// text. An empty return means detection did not produce a usable code;
// that is never an error for the caller.
func detectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	return whatlanggo.LangToString(info.Lang)
}
