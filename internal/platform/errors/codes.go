// Package errors provides coded errors for editor-facing simulator operations.
//
// Turn resolution never returns these: controller and execution failures are
// recovered into guard actions. Coded errors cover input an editor can get
// wrong (bad coordinates, hit points, turn numbers, recipe records).
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Board errors
	CodeLocationOutOfBounds Code = "LOCATION_OUT_OF_BOUNDS"
	CodeLocationBlocked     Code = "LOCATION_BLOCKED"
	CodeCellEmpty           Code = "CELL_EMPTY"

	// Robot errors
	CodeHPOutOfRange Code = "HP_OUT_OF_RANGE"
	CodeTeamInvalid  Code = "TEAM_INVALID"

	// Session errors
	CodeTurnOutOfRange Code = "TURN_OUT_OF_RANGE"
	CodePlanStale      Code = "PLAN_STALE"

	// Recipe errors
	CodeRecipeInvalid Code = "RECIPE_INVALID"
)

// UserFacing reports whether the code describes bad editor input rather than
// an internal fault.
func (c Code) UserFacing() bool {
	switch c {
	case CodeLocationOutOfBounds,
		CodeLocationBlocked,
		CodeCellEmpty,
		CodeHPOutOfRange,
		CodeTeamInvalid,
		CodeTurnOutOfRange,
		CodePlanStale,
		CodeRecipeInvalid:
		return true
	default:
		return false
	}
}
