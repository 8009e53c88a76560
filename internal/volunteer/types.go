// Package volunteer defines the domain types shared by the store, the
// violation ledger and the conversation layer.
package volunteer

import (
	"fmt"
	"time"
)

// Status is the standing of a volunteer.
type Status string

const (
	// StatusActive is the default standing of a volunteer.
	StatusActive Status = "Active"
	// StatusBlacklisted marks a volunteer removed from rotation, either by
	// automatic promotion or by a manual blacklist action.
	StatusBlacklisted Status = "Blacklisted"
)

// Volunteer is a tracked volunteer record.
type Volunteer struct {
	ID            int64
	FullName      string
	Contacts      string
	Status        Status
	LatenessCount int
	WarningsCount int
}

// TotalViolations returns the combined lateness and warning count.
func (v Volunteer) TotalViolations() int {
	return v.LatenessCount + v.WarningsCount
}

// BlacklistEntry is a row on the blacklist. At most one entry exists per
// full name; the reason of the first entry wins.
type BlacklistEntry struct {
	ID       int64
	FullName string
	Reason   string
	Added    time.Time
}

// EditableField enumerates the volunteer fields a principal may edit.
// Caller-supplied field names are parsed through this enum and never
// interpolated into query structure.
type EditableField string

const (
	FieldFullName EditableField = "full_name"
	FieldContacts EditableField = "contacts"
)

// ParseEditableField validates a caller-supplied field name against the
// allow-list of editable fields.
func ParseEditableField(name string) (EditableField, error) {
	switch EditableField(name) {
	case FieldFullName:
		return FieldFullName, nil
	case FieldContacts:
		return FieldContacts, nil
	}
	return "", fmt.Errorf("field %q is not editable", name)
}
