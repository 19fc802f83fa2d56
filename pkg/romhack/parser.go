package romhack

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Evolution is the structured form of a free-text evolution override.
type Evolution struct {
	Target string `json:"target"`
	Method string `json:"method"`
}

var (
	ErrNoOverride  = errors.New("no evolution override")
	ErrUnparsable  = errors.New("unparsable evolution override")
	evolutionRegex = regexp.MustCompile(
		`(?i)^evolves into ([A-Za-z0-9'.\- ]+?) ((?:at|by|via|using|with|when|while|after|during) .+)$`,
	)
)

// ParseEvolution extracts the target species and method description
// from override text like "Evolves into Vileplume using a Leaf Stone".
// The pattern matching is deliberately strict: text it cannot account
// for reports ErrUnparsable instead of a half-parsed result.
func ParseEvolution(text string) (*Evolution, error) {
	trimmed := strings.TrimSpace(text)
	matches := evolutionRegex.FindStringSubmatch(trimmed)
	if matches == nil {
		return nil, fmt.Errorf("override text %q: %w", text, ErrUnparsable)
	}

	return &Evolution{
		Target: strings.TrimSpace(matches[1]),
		Method: strings.TrimSpace(matches[2]),
	}, nil
}
