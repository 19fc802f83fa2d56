package typechart

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Efficacy is a damage factor scaled by 100, so that the product of two
// per-type factors stays integral.
type Efficacy int

const (
	DoubleSuperEffective   Efficacy = 400
	SuperEffective         Efficacy = 200
	NormalEffective        Efficacy = 100
	NotVeryEffective       Efficacy = 50
	DoubleNotVeryEffective Efficacy = 25
	Immune                 Efficacy = 0
)

// Multiplier returns the factor as the conventional damage multiplier.
func (e Efficacy) Multiplier() float64 {
	return float64(e) / 100
}

// Label renders the factor the way type charts print it.
func (e Efficacy) Label() string {
	switch e {
	case DoubleSuperEffective:
		return "4x"
	case SuperEffective:
		return "2x"
	case NormalEffective:
		return "1x"
	case NotVeryEffective:
		return "0.5x"
	case DoubleNotVeryEffective:
		return "0.25x"
	case Immune:
		return "0x"
	default:
		return fmt.Sprintf("%gx", e.Multiplier())
	}
}

// IsSuperEffective reports whether the factor meets the fixed 2x
// threshold used by the quiz.
func (e Efficacy) IsSuperEffective() bool {
	return e >= SuperEffective
}

// DamageRelation holds the per-type damage triples for a single
// defending type, as served by the remote type endpoint.
type DamageRelation struct {
	Type             string
	DoubleDamageFrom []string
	HalfDamageFrom   []string
	NoDamageFrom     []string
}

func (rel DamageRelation) factor(attacking string) Efficacy {
	for _, name := range rel.DoubleDamageFrom {
		if name == attacking {
			return SuperEffective
		}
	}
	for _, name := range rel.HalfDamageFrom {
		if name == attacking {
			return NotVeryEffective
		}
	}
	for _, name := range rel.NoDamageFrom {
		if name == attacking {
			return Immune
		}
	}

	return NormalEffective
}

// Entry is the computed factor for one attacking type. Note carries the
// explanation when an ability override forced the factor to zero.
type Entry struct {
	Type   string   `json:"type"`
	Factor Efficacy `json:"factor"`
	Note   string   `json:"note,omitempty"`
}

// Table is the full 18-entry defensive chart, in canonical type order.
type Table []Entry

// abilityImmunities maps an ability to the attacking type it nullifies.
var abilityImmunities = map[string]string{
	"levitate":     "ground",
	"volt-absorb":  "electric",
	"water-absorb": "water",
	"flash-fire":   "fire",
}

var (
	ErrNoDefendingTypes       = errors.New("no defending types")
	ErrTooManyDefendingTypes  = errors.New("more than two defending types")
	ErrDuplicateDefendingType = errors.New("duplicate defending type")
)

// Compute builds the defensive chart for a creature with the given
// defending type relations and abilities. Relations must cover one or
// two distinct known types; factors for the two are combined
// multiplicatively, and ability overrides run as a post-pass so that an
// otherwise nonzero factor can still be forced to zero.
func Compute(relations []DamageRelation, abilities []string) (Table, error) {
	switch {
	case len(relations) == 0:
		return nil, ErrNoDefendingTypes
	case len(relations) > 2:
		return nil, fmt.Errorf("got %d defending types: %w", len(relations), ErrTooManyDefendingTypes)
	}

	for i, rel := range relations {
		if !IsType(rel.Type) {
			return nil, fmt.Errorf("defending type %q: %w", rel.Type, ErrUnknownType)
		}
		for _, prev := range relations[:i] {
			if strings.EqualFold(prev.Type, rel.Type) {
				return nil, fmt.Errorf("defending type %q: %w", rel.Type, ErrDuplicateDefendingType)
			}
		}
	}

	table := make(Table, len(registry))
	for i, attacking := range registry {
		factor := NormalEffective
		for _, rel := range relations {
			factor = factor * rel.factor(attacking.Name) / 100
		}
		table[i] = Entry{Type: attacking.Name, Factor: factor}
	}

	for _, ability := range abilities {
		nullified, ok := abilityImmunities[strings.ToLower(ability)]
		if !ok {
			continue
		}
		for i := range table {
			if table[i].Type == nullified && table[i].Factor != Immune {
				table[i].Factor = Immune
				table[i].Note = fmt.Sprintf("%s damage nullified by %s", nullified, ability)
			}
		}
	}

	return table, nil
}

// SuperEffective returns the attacking types at or above the 2x
// threshold, in canonical order.
func (t Table) SuperEffective() []string {
	names := make([]string, 0, len(t))
	for _, entry := range t {
		if entry.Factor.IsSuperEffective() {
			names = append(names, entry.Type)
		}
	}

	return names
}

// Factor returns the entry for the given attacking type.
func (t Table) Factor(attacking string) (Entry, error) {
	lower := strings.ToLower(attacking)
	for _, entry := range t {
		if entry.Type == lower {
			return entry, nil
		}
	}

	return Entry{}, fmt.Errorf("attacking type %q not in table: %w", attacking, ErrUnknownType)
}

// Group is one display bucket of the chart (all types at one factor).
type Group struct {
	Factor Efficacy `json:"factor"`
	Label  string   `json:"label"`
	Types  []string `json:"types"`
}

// Groups buckets the table by factor, ordered 4x down to 0x, omitting
// empty buckets. The neutral bucket is included only when includeNeutral
// is set.
func (t Table) Groups(includeNeutral bool) []Group {
	byFactor := make(map[Efficacy][]string, 6)
	for _, entry := range t {
		byFactor[entry.Factor] = append(byFactor[entry.Factor], entry.Type)
	}

	order := []Efficacy{
		DoubleSuperEffective,
		SuperEffective,
		NormalEffective,
		NotVeryEffective,
		DoubleNotVeryEffective,
		Immune,
	}

	groups := make([]Group, 0, len(order))
	for _, factor := range order {
		names := byFactor[factor]
		if len(names) == 0 {
			continue
		}
		if factor == NormalEffective && !includeNeutral {
			continue
		}
		sort.Strings(names)
		groups = append(groups, Group{Factor: factor, Label: factor.Label(), Types: names})
	}

	return groups
}
