package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeLocationOutOfBounds = "LOCATION_OUT_OF_BOUNDS"
	CodeLocationBlocked     = "LOCATION_BLOCKED"
	CodeCellEmpty           = "CELL_EMPTY"
	CodeHPOutOfRange        = "HP_OUT_OF_RANGE"
	CodeTeamInvalid         = "TEAM_INVALID"
	CodeTurnOutOfRange      = "TURN_OUT_OF_RANGE"
	CodePlanStale           = "PLAN_STALE"
	CodeRecipeInvalid       = "RECIPE_INVALID"
)

var enUSMessages = map[Code]string{
	// Board errors
	CodeLocationOutOfBounds: "({{.x}}, {{.y}}) is off the board",
	CodeLocationBlocked:     "({{.x}}, {{.y}}) is an obstacle",
	CodeCellEmpty:           "No robot at ({{.x}}, {{.y}})",

	// Robot errors
	CodeHPOutOfRange: "HP {{.hp}} must be between 1 and {{.max}}",
	CodeTeamInvalid:  "Team {{.team}} does not exist; use 1 or 2",

	// Session errors
	CodeTurnOutOfRange: "Turn {{.turn}} must be between 1 and {{.max}}",
	CodePlanStale:      "The board changed since the preview; preview again",

	// Recipe errors
	CodeRecipeInvalid: "Recipe robot {{.record}} cannot be placed",
}
