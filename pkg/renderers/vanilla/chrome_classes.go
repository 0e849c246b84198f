package vanilla

import (
	"strings"

	"github.com/goliatone/go-formtags/pkg/renderers/components"
)

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm    ChromeClass = "formtags-form"
	ClassField   ChromeClass = "formtags-field"
	ClassHelp    ChromeClass = "formtags-help"
	ClassErrors  ChromeClass = "formtags-errors"
	ClassActions ChromeClass = "formtags-actions"
)

var chromeKeys = map[ChromeClass]string{
	ClassForm:    "form",
	ClassField:   "field",
	ClassHelp:    "help",
	ClassErrors:  "errors",
	ClassActions: "actions",
}

// chromeClasses returns the template "classes" map. Extra classes are appended
// to the semantic class, never replacing it.
func chromeClasses(extra map[ChromeClass]string) map[string]string {
	out := make(map[string]string, len(chromeKeys))
	for class, key := range chromeKeys {
		value := string(class)
		if add := components.SanitizeClassList(extra[class]); add != "" {
			value += " " + add
		}
		out[key] = value
	}
	return out
}

func mergeClasses(dst map[ChromeClass]string, src map[ChromeClass]string) map[ChromeClass]string {
	if dst == nil {
		dst = make(map[ChromeClass]string, len(src))
	}
	for class, value := range src {
		if _, ok := chromeKeys[class]; !ok {
			continue
		}
		dst[class] = strings.TrimSpace(dst[class] + " " + value)
	}
	return dst
}
