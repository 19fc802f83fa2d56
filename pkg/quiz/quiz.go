// Package quiz implements the "guess the super-effective types"
// minigame: round construction over the dex and pure scoring of a
// guessed type set against a computed defensive chart.
package quiz

import (
	"sort"
	"strings"

	"github.com/notjagan/dexweb/pkg/typechart"
)

// Verdict classifies one attacking type in a scored guess.
//
//go:generate go run github.com/dmarkham/enumer -type=Verdict -output=verdict_enumer.go
type Verdict int

const (
	Correct Verdict = iota
	Incorrect
	Missed
)

// Result is the outcome of scoring one guess. The three slices are
// disjoint and sorted; Win is set per the rules of Score.
type Result struct {
	Correct   []string `json:"correct"`
	Incorrect []string `json:"incorrect"`
	Missed    []string `json:"missed"`
	Win       bool     `json:"win"`
}

// Score grades a selection of attacking type names against the
// defensive chart. A selected type is correct iff its factor meets the
// 2x threshold, incorrect otherwise; an unselected type at or above
// the threshold is missed. The guess wins when there are no incorrect
// and no missed types; with no super-effective type at all, only the
// empty selection wins. Selection names are case-insensitive and
// deduplicated; unknown names count as incorrect.
func Score(selected []string, table typechart.Table) Result {
	chosen := make(map[string]bool, len(selected))
	for _, name := range selected {
		chosen[strings.ToLower(name)] = true
	}

	inTable := make(map[string]bool, len(table))
	result := Result{
		Correct:   []string{},
		Incorrect: []string{},
		Missed:    []string{},
	}
	for _, entry := range table {
		inTable[entry.Type] = true
		switch {
		case entry.Factor.IsSuperEffective() && chosen[entry.Type]:
			result.Correct = append(result.Correct, entry.Type)
		case entry.Factor.IsSuperEffective():
			result.Missed = append(result.Missed, entry.Type)
		case chosen[entry.Type]:
			result.Incorrect = append(result.Incorrect, entry.Type)
		}
	}

	for name := range chosen {
		if !inTable[name] {
			result.Incorrect = append(result.Incorrect, name)
		}
	}

	sort.Strings(result.Correct)
	sort.Strings(result.Incorrect)
	sort.Strings(result.Missed)
	result.Win = len(result.Incorrect) == 0 && len(result.Missed) == 0

	return result
}

// Verdicts flattens a result into a per-type classification.
func (r Result) Verdicts() map[string]Verdict {
	verdicts := make(map[string]Verdict, len(r.Correct)+len(r.Incorrect)+len(r.Missed))
	for _, name := range r.Correct {
		verdicts[name] = Correct
	}
	for _, name := range r.Incorrect {
		verdicts[name] = Incorrect
	}
	for _, name := range r.Missed {
		verdicts[name] = Missed
	}

	return verdicts
}
