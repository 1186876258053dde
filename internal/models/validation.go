package models

// RejectionCode is the closed set of rule-rejection kinds. Rejections are
// not errors: they become in-fiction narration, never exceptions.
type RejectionCode string

const (
	RejectionNoExit      RejectionCode = "no_exit"
	RejectionBlocked     RejectionCode = "blocked"
	RejectionNotFound    RejectionCode = "not_found"
	RejectionNotPortable RejectionCode = "not_portable"
	RejectionAlreadyHeld RejectionCode = "already_held"
)

// ExamineSource identifies which resolution branch matched an examine
// target. It decides both the event type and the description used.
type ExamineSource string

const (
	SourceInventory ExamineSource = "inventory"
	SourceDetail    ExamineSource = "detail"
	SourceExit      ExamineSource = "exit"
	SourceItem      ExamineSource = "item"
	SourceNPC       ExamineSource = "npc"
)

// ValidationContext carries everything a handler's Execute and CreateEvent
// steps need from Validate. It is the only channel between the steps, so
// each handler fills it self-sufficiently. Fields are a union across
// handlers; each handler uses its own subset.
type ValidationContext struct {
	// Movement
	Destination      string `json:"destination,omitempty"`
	Direction        string `json:"direction,omitempty"`
	DestinationKnown bool   `json:"destination_known,omitempty"`
	FirstVisit       bool   `json:"first_visit,omitempty"`

	// Examine / take
	EntityID    string        `json:"entity_id,omitempty"`
	EntityName  string        `json:"entity_name,omitempty"`
	Description string        `json:"description,omitempty"`
	Source      ExamineSource `json:"source,omitempty"`
	RevealsFlag string        `json:"reveals_flag,omitempty"`

	// Browse
	IsManualBrowse bool `json:"is_manual_browse,omitempty"`
}

// ValidationResult is the single channel for rule outcomes. Validators
// never panic or error for expected rule failures; malformed world data is
// the only programmer-error escape.
type ValidationResult struct {
	Valid           bool
	Context         ValidationContext
	RejectionCode   RejectionCode
	RejectionReason string
	Hint            string
}

// Accept builds a successful result carrying the given context.
func Accept(ctx ValidationContext) ValidationResult {
	return ValidationResult{Valid: true, Context: ctx}
}

// Reject builds a failed result with a code and an in-fiction reason.
func Reject(code RejectionCode, reason string) ValidationResult {
	return ValidationResult{Valid: false, RejectionCode: code, RejectionReason: reason}
}

// RejectWithHint builds a failed result that also carries a player hint.
func RejectWithHint(code RejectionCode, reason, hint string) ValidationResult {
	return ValidationResult{Valid: false, RejectionCode: code, RejectionReason: reason, Hint: hint}
}
