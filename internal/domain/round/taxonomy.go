package round

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrUnknownAlias   = errors.New("round alias does not match any round type")
	ErrAmbiguousAlias = errors.New("round alias matches too many round types")
)

// knockoutPlayoffs would otherwise also match the QUALIFYING pattern.
const knockoutPlayoffs = "Knockout Round Play-offs"

type definition struct {
	kind     Type
	aliases  []*regexp.Regexp
	display  string
	numbered bool
}

// taxonomy is ordered; resolution results keep this order.
var taxonomy = []definition{
	{kind: TypeQualifying, aliases: aliases(`.*Play-offs.*`, `Preliminary Round`, `.*Qualifying.*`, `Relegation Round`)},
	{kind: TypeSeason, aliases: aliases(`Regular Season.*`), numbered: true},
	{kind: TypeGroupStage, aliases: aliases(`Group.*`), numbered: true},
	{kind: TypeRoundOf32, aliases: aliases(`Round of 32`), display: "1 / 16"},
	{kind: TypeRoundOf32Return, aliases: aliases(`Round of 32`), display: "1 / 16"},
	{kind: TypeRoundOf16, aliases: aliases(`Round of 16`), display: "1 / 8"},
	{kind: TypeRoundOf16Return, aliases: aliases(`Round of 16`), display: "1 / 8"},
	{kind: TypeQuarterFinal, aliases: aliases(`Quarter-finals`), display: "1 / 4"},
	{kind: TypeQuarterFinalReturn, aliases: aliases(`Quarter-finals`), display: "1 / 4"},
	{kind: TypeSemiFinal, aliases: aliases(`Semi-finals`), display: "1 / 2"},
	{kind: TypeSemiFinalReturn, aliases: aliases(`Semi-finals`), display: "1 / 2"},
	{kind: TypeThirdPlaceFinal, aliases: aliases(`3rd Place Final`), display: "🥉"},
	{kind: TypeFinal, aliases: aliases(`Final`), display: "🏆"},
}

func aliases(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		out = append(out, regexp.MustCompile(`^(?:`+pattern+`)$`))
	}
	return out
}

func definitionOf(kind Type) (definition, bool) {
	for _, def := range taxonomy {
		if def.kind == kind {
			return def, true
		}
	}
	return definition{}, false
}

func (d definition) matches(alias string) bool {
	for _, re := range d.aliases {
		if re.MatchString(alias) {
			return true
		}
	}
	return false
}

// Types returns every known round type in taxonomy order.
func Types() []Type {
	out := make([]Type, 0, len(taxonomy))
	for _, def := range taxonomy {
		out = append(out, def.kind)
	}
	return out
}

// ResolveTypes maps a provider round label onto one or two round types.
// Two types are returned for the legs of a two-legged knockout tie.
func ResolveTypes(alias string) ([]Type, error) {
	if alias == knockoutPlayoffs {
		return []Type{TypeRoundOf32}, nil
	}

	matched := make([]Type, 0, 2)
	for _, def := range taxonomy {
		if def.matches(alias) {
			matched = append(matched, def.kind)
		}
	}

	switch {
	case len(matched) == 0:
		return nil, fmt.Errorf("%w: alias=%q", ErrUnknownAlias, alias)
	case len(matched) > 2:
		return nil, fmt.Errorf("%w: alias=%q types=%v", ErrAmbiguousAlias, alias, matched)
	default:
		return matched, nil
	}
}
