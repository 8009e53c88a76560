package session

// State is the conversation state of one principal. Idle is the initial and
// terminal state; every flow returns to Idle on completion, cancellation or
// error recovery.
type State int

const (
	Idle State = iota
	AwaitingLatenessID
	AwaitingWarningID
	AwaitingBlacklistID
	AwaitingBlacklistReason
	AwaitingAddName
	AwaitingAddContact
	AwaitingEditID
	AwaitingEditField
	AwaitingEditValue
	AwaitingSearchQuery
	AwaitingDeleteID
	AwaitingDeleteConfirm
)

var stateNames = map[State]string{
	Idle:                    "idle",
	AwaitingLatenessID:      "awaiting_lateness_id",
	AwaitingWarningID:       "awaiting_warning_id",
	AwaitingBlacklistID:     "awaiting_blacklist_id",
	AwaitingBlacklistReason: "awaiting_blacklist_reason",
	AwaitingAddName:         "awaiting_add_name",
	AwaitingAddContact:      "awaiting_add_contact",
	AwaitingEditID:          "awaiting_edit_id",
	AwaitingEditField:       "awaiting_edit_field",
	AwaitingEditValue:       "awaiting_edit_value",
	AwaitingSearchQuery:     "awaiting_search_query",
	AwaitingDeleteID:        "awaiting_delete_id",
	AwaitingDeleteConfirm:   "awaiting_delete_confirm",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
