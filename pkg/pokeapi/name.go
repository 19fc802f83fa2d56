package pokeapi

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns an API slug like "mr-mime" into "Mr Mime". The
// caser is built per call; cases.Caser is not safe for concurrent use.
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}
