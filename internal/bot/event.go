package bot

// Kind discriminates the two inbound event kinds.
type Kind string

const (
	// KindCallback carries an opaque token from a menu or inline control.
	KindCallback Kind = "callback"
	// KindText carries free-form text typed by the principal.
	KindText Kind = "text"
)

// Event is one inbound conversational event. Exactly one of Token or Text is
// meaningful, depending on Kind.
type Event struct {
	Principal int64
	Kind      Kind
	Token     string
	Text      string
}

// Callback tokens understood by the router. Flow-starting tokens only act
// from the Idle state; view tokens render from any state without touching it.
const (
	tokenMenuVolunteers      = "menu_volunteers"
	tokenMenuLateness        = "menu_lateness"
	tokenMenuWarning         = "menu_warning"
	tokenMenuBlacklist       = "menu_blacklist"
	tokenMenuBlacklistDirect = "menu_blacklist_direct"
	tokenMenuAddVolunteer    = "menu_add_volunteer"
	tokenMenuEditVolunteer   = "menu_edit_volunteer"
	tokenMenuManage          = "menu_manage"
	tokenMenuStatistics      = "menu_statistics"
	tokenMenuSearch          = "menu_search"
	tokenMenuDelete          = "menu_delete_volunteer"
	tokenMenuBack            = "menu_back"
	tokenConfirmDeleteYes    = "confirm_delete_yes"
	tokenConfirmDeleteNo     = "confirm_delete_no"

	editFieldPrefix = "edit_field_"

	startCommand = "/start"
)

// List kinds for pagination tokens.
const (
	listVolunteers = "volunteers"
	listBlacklist  = "blacklist"
)

// Scratch data keys.
const (
	keyVolunteerID = "volunteer_id"
	keyField       = "field"
	keyFullName    = "full_name"
)
