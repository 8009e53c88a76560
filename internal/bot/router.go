// Package bot implements the conversation router: a per-principal state
// machine that consumes callback and text events, drives the add, edit,
// delete, search and violation flows, and emits renders for the transport
// to deliver.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/volunteerd/internal/ledger"
	"github.com/fyrsmithlabs/volunteerd/internal/pager"
	"github.com/fyrsmithlabs/volunteerd/internal/session"
	"github.com/fyrsmithlabs/volunteerd/internal/store"
	"github.com/fyrsmithlabs/volunteerd/internal/volunteer"
)

// Router dispatches inbound events against per-principal session state.
type Router struct {
	sessions *session.Store
	store    store.Store
	ledger   *ledger.Ledger
	logger   *zap.Logger
	metrics  *Metrics
}

// NewRouter wires the conversation router.
func NewRouter(sessions *session.Store, st store.Store, lg *ledger.Ledger, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		sessions: sessions,
		store:    st,
		ledger:   lg,
		logger:   logger,
		metrics:  NewMetrics(logger),
	}
}

// HandleEvent processes one inbound event and returns the renders to
// deliver. Handling for the same principal is serialized; an empty result
// means the event was ignored.
func (r *Router) HandleEvent(ctx context.Context, ev Event) []Render {
	start := time.Now()
	eventID := uuid.NewString()

	sess, release := r.sessions.Acquire(ev.Principal)
	defer release()

	state := sess.State
	defer r.metrics.recordEvent(ctx, ev.Kind, state.String(), start)

	r.logger.Debug("handling event",
		zap.String("event_id", eventID),
		zap.Int64("principal", ev.Principal),
		zap.String("kind", string(ev.Kind)),
		zap.Stringer("state", state),
	)

	switch ev.Kind {
	case KindCallback:
		return r.handleCallback(ctx, sess, ev)
	case KindText:
		return r.handleText(ctx, sess, ev)
	}
	r.logger.Warn("unknown event kind", zap.String("event_id", eventID), zap.String("kind", string(ev.Kind)))
	return nil
}

// handleCallback dispatches a callback token. Pagination tokens are checked
// first, then view tokens, then state-gated flow tokens; anything left is
// ignored.
func (r *Router) handleCallback(ctx context.Context, sess *session.Session, ev Event) []Render {
	// Pagination is stateless navigation, never part of the state machine.
	if kind, page, ok := pager.ParseToken(ev.Token); ok {
		switch kind {
		case listVolunteers:
			return r.listRender(ctx, sess, func() (Render, error) { return r.renderVolunteersPage(ctx, page) })
		case listBlacklist:
			return r.listRender(ctx, sess, func() (Render, error) { return r.renderBlacklistPage(ctx, page) })
		}
		return nil
	}

	// View tokens render from any state and leave the state machine alone.
	switch ev.Token {
	case tokenMenuVolunteers:
		return r.listRender(ctx, sess, func() (Render, error) { return r.renderVolunteersPage(ctx, 0) })
	case tokenMenuBlacklist:
		return r.listRender(ctx, sess, func() (Render, error) { return r.renderBlacklistPage(ctx, 0) })
	case tokenMenuStatistics:
		return r.renderStatistics(ctx, sess)
	case tokenMenuManage:
		return []Render{withMenu(msgManageMenu, manageMenu())}
	case tokenMenuBack:
		return []Render{withMenu(msgMainMenu, mainMenu())}
	}

	// Flow-starting menu selections only act from Idle.
	if sess.State == session.Idle {
		if prompt, next, ok := flowStart(ev.Token); ok {
			sess.State = next
			return []Render{text(prompt)}
		}
	}

	if sess.State == session.AwaitingDeleteConfirm {
		switch ev.Token {
		case tokenConfirmDeleteYes:
			return r.confirmDelete(ctx, sess)
		case tokenConfirmDeleteNo:
			sess.Clear()
			return []Render{withMenu(msgDeleteCancelled, manageMenu())}
		}
	}

	if sess.State == session.AwaitingEditField && strings.HasPrefix(ev.Token, editFieldPrefix) {
		return r.chooseEditField(sess, strings.TrimPrefix(ev.Token, editFieldPrefix))
	}

	// Unrecognized in this state: no state change, no render.
	return nil
}

// flowStart maps a flow-starting menu token to its prompt and first state.
func flowStart(token string) (prompt string, next session.State, ok bool) {
	switch token {
	case tokenMenuLateness:
		return msgPromptLateness, session.AwaitingLatenessID, true
	case tokenMenuWarning:
		return msgPromptWarning, session.AwaitingWarningID, true
	case tokenMenuBlacklistDirect:
		return msgPromptBlacklist, session.AwaitingBlacklistID, true
	case tokenMenuAddVolunteer:
		return msgPromptAddName, session.AwaitingAddName, true
	case tokenMenuEditVolunteer:
		return msgPromptEditID, session.AwaitingEditID, true
	case tokenMenuSearch:
		return msgPromptSearch, session.AwaitingSearchQuery, true
	case tokenMenuDelete:
		return msgPromptDeleteID, session.AwaitingDeleteID, true
	}
	return "", session.Idle, false
}

// handleText dispatches free-form text against the current state.
func (r *Router) handleText(ctx context.Context, sess *session.Session, ev Event) []Render {
	switch sess.State {
	case session.Idle:
		if strings.TrimSpace(ev.Text) == startCommand {
			return []Render{withMenu(msgMainMenu, mainMenu())}
		}
		return nil

	case session.AwaitingLatenessID:
		return r.recordViolation(ctx, sess, ev.Text, r.ledger.RecordLateness)

	case session.AwaitingWarningID:
		return r.recordViolation(ctx, sess, ev.Text, r.ledger.RecordWarning)

	case session.AwaitingBlacklistID:
		id, ok := parseID(ev.Text)
		if !ok {
			return []Render{text(msgEnterNumber)}
		}
		sess.Set(keyVolunteerID, strconv.FormatInt(id, 10))
		sess.State = session.AwaitingBlacklistReason
		return []Render{text(msgPromptReason)}

	case session.AwaitingBlacklistReason:
		return r.applyManualBlacklist(ctx, sess, ev.Text)

	case session.AwaitingAddName:
		sess.Set(keyFullName, ev.Text)
		sess.State = session.AwaitingAddContact
		return []Render{text(msgPromptContact)}

	case session.AwaitingAddContact:
		return r.addVolunteer(ctx, sess, ev.Text)

	case session.AwaitingEditID:
		id, ok := parseID(ev.Text)
		if !ok {
			return []Render{text(msgEnterNumber)}
		}
		sess.Set(keyVolunteerID, strconv.FormatInt(id, 10))
		sess.State = session.AwaitingEditField
		return []Render{withMenu(msgPromptEditField, editFieldMenu())}

	case session.AwaitingEditValue:
		return r.applyEdit(ctx, sess, ev.Text)

	case session.AwaitingSearchQuery:
		return r.search(ctx, sess, ev.Text)

	case session.AwaitingDeleteID:
		return r.startDeleteConfirm(ctx, sess, ev.Text)

	case session.AwaitingDeleteConfirm:
		// Only the confirmation buttons advance this state.
		return nil
	}
	return nil
}

// recordViolation parses a volunteer id and records a lateness or warning
// through the ledger. Malformed ids reprompt in place.
func (r *Router) recordViolation(ctx context.Context, sess *session.Session, input string,
	record func(context.Context, int64) (ledger.Outcome, error)) []Render {

	id, ok := parseID(input)
	if !ok {
		return []Render{text(msgEnterNumber)}
	}

	out, err := record(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return finishToMainMenu(sess, text(msgNotFound))
	}
	if err != nil {
		return r.storageFailure(sess, err)
	}

	v := out.Volunteer
	var result Render
	if out.Promoted {
		r.metrics.recordPromotion(ctx)
		result = text(fmt.Sprintf("Volunteer %s promoted to the blacklist (%d violations).",
			v.FullName, v.TotalViolations()))
	} else {
		result = text(fmt.Sprintf("Violation recorded: %s (Lateness: %d, Warnings: %d, Total: %d)",
			v.FullName, v.LatenessCount, v.WarningsCount, v.TotalViolations()))
	}
	return finishToMainMenu(sess, result)
}

func (r *Router) applyManualBlacklist(ctx context.Context, sess *session.Session, reason string) []Render {
	id, ok := scratchID(sess)
	if !ok {
		return r.storageFailure(sess, errors.New("blacklist flow lost its volunteer id"))
	}

	v, err := r.ledger.ApplyManualBlacklist(ctx, id, reason)
	if errors.Is(err, store.ErrNotFound) {
		return finishToMainMenu(sess, text(msgNotFound))
	}
	if err != nil {
		return r.storageFailure(sess, err)
	}
	return finishToMainMenu(sess,
		text(fmt.Sprintf("Volunteer %s blacklisted. Reason: %s", v.FullName, reason)))
}

func (r *Router) addVolunteer(ctx context.Context, sess *session.Session, contacts string) []Render {
	name, ok := sess.Get(keyFullName)
	if !ok {
		return r.storageFailure(sess, errors.New("add flow lost the volunteer name"))
	}

	_, err := r.store.InsertVolunteer(ctx, name, contacts)
	if errors.Is(err, store.ErrDuplicate) {
		return finishToMainMenu(sess, text(msgDuplicate))
	}
	if err != nil {
		return r.storageFailure(sess, err)
	}
	return finishToMainMenu(sess, text(fmt.Sprintf("Volunteer %s added.", name)))
}

func (r *Router) chooseEditField(sess *session.Session, name string) []Render {
	field, err := volunteer.ParseEditableField(name)
	if err != nil {
		// Not an allow-listed field; treat like any unrecognized event.
		return nil
	}
	sess.Set(keyField, string(field))
	sess.State = session.AwaitingEditValue
	return []Render{text(fmt.Sprintf("Enter the new value for %s:", field))}
}

func (r *Router) applyEdit(ctx context.Context, sess *session.Session, value string) []Render {
	id, ok := scratchID(sess)
	if !ok {
		return r.storageFailure(sess, errors.New("edit flow lost its volunteer id"))
	}
	fieldName, ok := sess.Get(keyField)
	if !ok {
		return r.storageFailure(sess, errors.New("edit flow lost its field"))
	}
	field, err := volunteer.ParseEditableField(fieldName)
	if err != nil {
		return r.storageFailure(sess, err)
	}

	err = r.store.UpdateField(ctx, id, field, value)
	if errors.Is(err, store.ErrNotFound) {
		return finishToMainMenu(sess, text(msgNotFound))
	}
	if err != nil {
		return r.storageFailure(sess, err)
	}
	return finishToMainMenu(sess, text(fmt.Sprintf("%s updated: %s", field, value)))
}

func (r *Router) search(ctx context.Context, sess *session.Session, query string) []Render {
	matches, err := r.store.SearchVolunteers(ctx, strings.TrimSpace(query))
	if err != nil {
		return r.storageFailure(sess, err)
	}
	sess.Clear()

	if len(matches) == 0 {
		return []Render{withMenu(msgNoMatches, manageMenu())}
	}
	var b strings.Builder
	b.WriteString("Search results:\n")
	for _, v := range matches {
		b.WriteString(formatVolunteerRow(v))
		b.WriteString("\n")
	}
	return []Render{withMenu(b.String(), manageMenu())}
}

func (r *Router) startDeleteConfirm(ctx context.Context, sess *session.Session, input string) []Render {
	id, ok := parseID(input)
	if !ok {
		return []Render{text(msgEnterNumber)}
	}

	v, err := r.store.GetVolunteer(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		sess.Clear()
		return []Render{withMenu(msgNotFound, manageMenu())}
	}
	if err != nil {
		return r.storageFailure(sess, err)
	}

	sess.Set(keyVolunteerID, strconv.FormatInt(id, 10))
	sess.State = session.AwaitingDeleteConfirm
	return []Render{withMenu(
		fmt.Sprintf("Are you sure you want to delete %s?", v.FullName),
		confirmDeleteMenu())}
}

func (r *Router) confirmDelete(ctx context.Context, sess *session.Session) []Render {
	id, ok := scratchID(sess)
	if !ok {
		return r.storageFailure(sess, errors.New("delete flow lost its volunteer id"))
	}

	err := r.store.DeleteVolunteer(ctx, id)
	sess.Clear()
	if errors.Is(err, store.ErrNotFound) {
		// Deleted out from under the confirmation; same terminal message.
		return []Render{withMenu(msgNotFound, manageMenu())}
	}
	if err != nil {
		r.logger.Error("delete volunteer failed", zap.Int64("volunteer_id", id), zap.Error(err))
		return []Render{withMenu(msgStorageFailure, manageMenu())}
	}
	return []Render{withMenu(msgDeleted, manageMenu())}
}

func (r *Router) renderStatistics(ctx context.Context, sess *session.Session) []Render {
	st, err := r.store.Stats(ctx)
	if err != nil {
		return r.storageFailure(sess, err)
	}
	return []Render{withMenu(fmt.Sprintf(
		"Statistics:\nVolunteers: %d\nLateness total: %d\nWarnings total: %d\nBlacklisted: %d",
		st.Volunteers, st.Lateness, st.Warnings, st.Blacklisted,
	), manageMenu())}
}

// listRender runs a list view, converting storage failures into the generic
// failure render.
func (r *Router) listRender(ctx context.Context, sess *session.Session, view func() (Render, error)) []Render {
	rend, err := view()
	if err != nil {
		return r.storageFailure(sess, err)
	}
	return []Render{rend}
}

// storageFailure logs the error, resets the session for safety and reports
// a generic failure to the principal. The process never dies on a storage
// error.
func (r *Router) storageFailure(sess *session.Session, err error) []Render {
	r.logger.Error("storage failure", zap.Error(err))
	sess.Clear()
	return []Render{text(msgStorageFailure), withMenu(msgMainMenu, mainMenu())}
}

// finishToMainMenu clears the session and appends the main menu after the
// flow's terminal render.
func finishToMainMenu(sess *session.Session, result Render) []Render {
	sess.Clear()
	return []Render{result, withMenu(msgMainMenu, mainMenu())}
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func scratchID(sess *session.Session) (int64, bool) {
	raw, ok := sess.Get(keyVolunteerID)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
