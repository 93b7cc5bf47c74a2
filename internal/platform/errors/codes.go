// Package errors provides structured, coded errors for the combat engine.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Cadence and timeline input errors
	CodeInvalidAttackSpeed  Code = "INVALID_ATTACK_SPEED"
	CodeInvalidAbilityHaste Code = "INVALID_ABILITY_HASTE"
	CodeInvalidTurnCount    Code = "INVALID_TURN_COUNT"
	CodeInvalidActor        Code = "INVALID_ACTOR"
	CodeInvalidStunDuration Code = "INVALID_STUN_DURATION"
	CodeInvalidMove         Code = "INVALID_MOVE"

	// Ledger input errors
	CodeInvalidCooldown     Code = "INVALID_COOLDOWN"
	CodeInvalidBuffDuration Code = "INVALID_BUFF_DURATION"
	CodeUnknownStat         Code = "UNKNOWN_STAT"

	// Encounter errors
	CodeInvalidHealth      Code = "INVALID_HEALTH"
	CodeEncounterOver      Code = "ENCOUNTER_OVER"
	CodeItemNotCarried     Code = "ITEM_NOT_CARRIED"
	CodeItemNotConsumable  Code = "ITEM_NOT_CONSUMABLE"
	CodeUnknownAbility     Code = "UNKNOWN_ABILITY"
	CodeUnknownItem        Code = "UNKNOWN_ITEM"

	// Catalog errors
	CodeCatalogDuplicateID Code = "CATALOG_DUPLICATE_ID"
	CodeCatalogInvalid     Code = "CATALOG_INVALID"

	// Invariant violations (programming errors)
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Kind groups codes into the categories callers act on.
type Kind int

const (
	// KindNone is reported for a nil error.
	KindNone Kind = iota
	// KindInvalidInput rejects caller-supplied values.
	KindInvalidInput
	// KindPrecondition means the state does not allow the operation.
	KindPrecondition
	// KindNotFound means a referenced record does not exist.
	KindNotFound
	// KindInvariant means internal state broke an invariant.
	KindInvariant
	// KindInternal covers everything else.
	KindInternal
)

// String returns a short lowercase label for logs.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidInput:
		return "invalid_input"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindInvariant:
		return "invariant"
	default:
		return "internal"
	}
}

// Kind maps domain codes to error categories.
func (c Code) Kind() Kind {
	switch c {
	// InvalidInput - validation failures, bad input
	case CodeInvalidAttackSpeed,
		CodeInvalidAbilityHaste,
		CodeInvalidTurnCount,
		CodeInvalidActor,
		CodeInvalidStunDuration,
		CodeInvalidMove,
		CodeInvalidCooldown,
		CodeInvalidBuffDuration,
		CodeUnknownStat,
		CodeInvalidHealth,
		CodeCatalogDuplicateID,
		CodeCatalogInvalid:
		return KindInvalidInput

	// Precondition - state doesn't allow operation
	case CodeEncounterOver,
		CodeItemNotCarried,
		CodeItemNotConsumable:
		return KindPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeUnknownAbility,
		CodeUnknownItem:
		return KindNotFound

	case CodeInvariantViolation:
		return KindInvariant

	default:
		return KindInternal
	}
}
