package round

import (
	"strconv"
	"strings"
	"time"
)

// Type tags a round with its place in the competition taxonomy.
type Type string

const (
	TypeQualifying         Type = "QUALIFYING"
	TypeSeason             Type = "SEASON"
	TypeGroupStage         Type = "GROUP_STAGE"
	TypeRoundOf32          Type = "ROUND_OF_32"
	TypeRoundOf32Return    Type = "ROUND_OF_32_RETURN"
	TypeRoundOf16          Type = "ROUND_OF_16"
	TypeRoundOf16Return    Type = "ROUND_OF_16_RETURN"
	TypeQuarterFinal       Type = "QUARTER_FINAL"
	TypeQuarterFinalReturn Type = "QUARTER_FINAL_RETURN"
	TypeSemiFinal          Type = "SEMI_FINAL"
	TypeSemiFinalReturn    Type = "SEMI_FINAL_RETURN"
	TypeThirdPlaceFinal    Type = "THIRD_PLACE_FINAL"
	TypeFinal              Type = "FINAL"
)

const returnSuffix = "_RETURN"

// IsReturn reports whether the type is the second leg of a two-legged tie.
func (t Type) IsReturn() bool {
	return strings.HasSuffix(string(t), returnSuffix)
}

// Round is one stage of a season. ExternalName is the provider's round label.
type Round struct {
	ID           string
	SeasonID     string
	Type         Type
	OrderNumber  int
	ExternalName string
	CreatedAt    time.Time
}

// DisplayName renders the short label shown next to round fixtures.
func (r Round) DisplayName() string {
	def, ok := definitionOf(r.Type)
	if !ok {
		return ""
	}
	if def.numbered {
		return strconv.Itoa(r.OrderNumber)
	}

	return def.display
}
