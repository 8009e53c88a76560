// Package store defines the persistence gateway for volunteer and blacklist
// records. Implementations live in subpackages; services depend only on the
// Store interface.
package store

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/volunteerd/internal/volunteer"
)

// Errors returned by Store implementations. Callers classify with errors.Is;
// anything else is treated as a storage failure.
var (
	// ErrNotFound indicates the requested volunteer does not exist.
	ErrNotFound = errors.New("volunteer not found")
	// ErrDuplicate indicates a volunteer with the same (full name, contacts)
	// pair already exists.
	ErrDuplicate = errors.New("volunteer already exists")
)

// Stats holds aggregate counters over the volunteer table.
type Stats struct {
	Volunteers  int
	Lateness    int
	Warnings    int
	Blacklisted int
}

// Store persists volunteers and blacklist entries.
type Store interface {
	// ListVolunteers returns all volunteers ordered by id.
	ListVolunteers(ctx context.Context) ([]volunteer.Volunteer, error)

	// ListBlacklist returns all blacklist entries ordered by id.
	ListBlacklist(ctx context.Context) ([]volunteer.BlacklistEntry, error)

	// GetVolunteer returns the volunteer with the given id, or ErrNotFound.
	GetVolunteer(ctx context.Context, id int64) (volunteer.Volunteer, error)

	// InsertVolunteer creates a volunteer and returns its id. Returns
	// ErrDuplicate when an identical (full name, contacts) pair exists.
	InsertVolunteer(ctx context.Context, fullName, contacts string) (int64, error)

	// IncrementLateness atomically adds one to the volunteer's lateness
	// count. Returns ErrNotFound when no such volunteer exists.
	IncrementLateness(ctx context.Context, id int64) error

	// IncrementWarning atomically adds one to the volunteer's warning
	// count. Returns ErrNotFound when no such volunteer exists.
	IncrementWarning(ctx context.Context, id int64) error

	// SetStatus updates the volunteer's status. Returns ErrNotFound when no
	// such volunteer exists.
	SetStatus(ctx context.Context, id int64, status volunteer.Status) error

	// UpsertBlacklistEntry inserts a blacklist entry for the name. A no-op
	// when an entry for the name already exists; the existing reason is
	// preserved.
	UpsertBlacklistEntry(ctx context.Context, fullName, reason string) error

	// DeleteVolunteer removes the volunteer. Returns ErrNotFound when no
	// such volunteer exists.
	DeleteVolunteer(ctx context.Context, id int64) error

	// SearchVolunteers returns volunteers whose full name or contacts
	// contain the substring, case-insensitively, ordered by id.
	SearchVolunteers(ctx context.Context, substring string) ([]volunteer.Volunteer, error)

	// UpdateField sets one editable field of the volunteer. Returns
	// ErrNotFound when no such volunteer exists.
	UpdateField(ctx context.Context, id int64, field volunteer.EditableField, value string) error

	// Stats returns aggregate counters over the volunteer table.
	Stats(ctx context.Context) (Stats, error)
}
