package bot

// Button is one labeled action in a menu render.
type Button struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Menu is a grouped set of labeled actions, one slice per row.
type Menu struct {
	Rows [][]Button `json:"rows"`
}

// Render is one outbound message: text plus an optional menu. Delivery to
// the principal is the transport's concern.
type Render struct {
	Text string `json:"text"`
	Menu *Menu  `json:"menu,omitempty"`
}

func text(msg string) Render {
	return Render{Text: msg}
}

func withMenu(msg string, menu *Menu) Render {
	return Render{Text: msg, Menu: menu}
}

// User-facing messages.
const (
	msgMainMenu        = "Main menu:"
	msgManageMenu      = "Choose an action:"
	msgEnterNumber     = "Enter a number (id)."
	msgNotFound        = "Volunteer not found."
	msgStorageFailure  = "Something went wrong, please try again."
	msgPromptLateness  = "Enter the volunteer id to record a lateness:"
	msgPromptWarning   = "Enter the volunteer id to record a warning:"
	msgPromptBlacklist = "Enter the volunteer id to blacklist:"
	msgPromptReason    = "Enter the blacklist reason:"
	msgPromptAddName   = "Enter the new volunteer's full name:"
	msgPromptContact   = "Enter the contact details:"
	msgPromptEditID    = "Enter the volunteer id to edit:"
	msgPromptEditField = "Choose the field to edit:"
	msgPromptSearch    = "Enter a name or contact to search for:"
	msgPromptDeleteID  = "Enter the volunteer id to delete:"
	msgDeleted         = "Volunteer deleted."
	msgDeleteCancelled = "Deletion cancelled."
	msgDuplicate       = "This volunteer already exists."
	msgNoMatches       = "Nothing found."
	msgEmptyVolunteers = "No volunteers yet."
	msgEmptyBlacklist  = "The blacklist is empty."
)

func mainMenu() *Menu {
	return &Menu{Rows: [][]Button{
		{
			{Label: "Volunteers", Token: tokenMenuVolunteers},
			{Label: "Lateness", Token: tokenMenuLateness},
		},
		{
			{Label: "Warning", Token: tokenMenuWarning},
			{Label: "Blacklist (manual)", Token: tokenMenuBlacklistDirect},
		},
		{
			{Label: "Add", Token: tokenMenuAddVolunteer},
			{Label: "Edit", Token: tokenMenuEditVolunteer},
		},
		{
			{Label: "Blacklist", Token: tokenMenuBlacklist},
			{Label: "Manage", Token: tokenMenuManage},
		},
	}}
}

func manageMenu() *Menu {
	return &Menu{Rows: [][]Button{
		{
			{Label: "Statistics", Token: tokenMenuStatistics},
			{Label: "Search", Token: tokenMenuSearch},
		},
		{
			{Label: "Delete volunteer", Token: tokenMenuDelete},
		},
		{
			{Label: "Back", Token: tokenMenuBack},
		},
	}}
}

func editFieldMenu() *Menu {
	return &Menu{Rows: [][]Button{
		{
			{Label: "Full name", Token: editFieldPrefix + "full_name"},
			{Label: "Contacts", Token: editFieldPrefix + "contacts"},
		},
	}}
}

func confirmDeleteMenu() *Menu {
	return &Menu{Rows: [][]Button{
		{
			{Label: "Yes, delete", Token: tokenConfirmDeleteYes},
			{Label: "Cancel", Token: tokenConfirmDeleteNo},
		},
	}}
}
