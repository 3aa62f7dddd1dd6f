package round

import (
	"fmt"
	"regexp"
	"strconv"
)

var numberedSuffix = regexp.MustCompile(` - (\d+)$`)

// Plan builds the rounds still missing for the given provider aliases.
// Existing rounds keep their order numbers; aliases that already have rounds
// are skipped, so planning the same aliases twice yields nothing new.
func Plan(seasonID string, existing []Round, aliases []string, newID func() (string, error)) ([]Round, error) {
	known := make(map[string]struct{}, len(existing))
	next := 1
	for _, r := range existing {
		known[r.ExternalName] = struct{}{}
		if r.OrderNumber+1 > next {
			next = r.OrderNumber + 1
		}
	}

	planned := make([]Round, 0)
	for _, alias := range aliases {
		if _, ok := known[alias]; ok {
			continue
		}
		known[alias] = struct{}{}

		types, err := ResolveTypes(alias)
		if err != nil {
			return nil, err
		}

		for _, kind := range types {
			order, consumed := orderNumberFor(kind, alias, next)
			if consumed {
				next++
			}

			id, err := newID()
			if err != nil {
				return nil, fmt.Errorf("generate round id: %w", err)
			}
			planned = append(planned, Round{
				ID:           id,
				SeasonID:     seasonID,
				Type:         kind,
				OrderNumber:  order,
				ExternalName: alias,
			})
		}
	}

	return planned, nil
}

// orderNumberFor reports the order number for a new round and whether the
// running counter value was used.
func orderNumberFor(kind Type, alias string, counter int) (int, bool) {
	switch kind {
	case TypeQualifying:
		return 0, false
	case TypeSeason, TypeGroupStage:
		if m := numberedSuffix.FindStringSubmatch(alias); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, false
			}
		}
	}
	return counter, true
}

// PickLeg chooses the round a match belongs to among the rounds sharing one
// provider alias. For a two-legged tie the match goes to the return leg when
// the first leg already holds the reversed fixture.
func PickLeg(candidates []Round, firstLegHasReverse func(firstLeg Round) bool) (Round, error) {
	switch len(candidates) {
	case 0:
		return Round{}, ErrUnknownAlias
	case 1:
		return candidates[0], nil
	case 2:
	default:
		return Round{}, fmt.Errorf("%w: candidates=%d", ErrAmbiguousAlias, len(candidates))
	}

	var first, second *Round
	for i := range candidates {
		if candidates[i].Type.IsReturn() {
			second = &candidates[i]
		} else {
			first = &candidates[i]
		}
	}
	if first == nil || second == nil {
		return Round{}, fmt.Errorf("%w: rounds %q and %q are not legs of one tie",
			ErrAmbiguousAlias, candidates[0].Type, candidates[1].Type)
	}

	if firstLegHasReverse != nil && firstLegHasReverse(*first) {
		return *second, nil
	}
	return *first, nil
}
