package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/volunteerd/internal/pager"
	"github.com/fyrsmithlabs/volunteerd/internal/volunteer"
)

// renderVolunteersPage renders one page of the volunteer list.
func (r *Router) renderVolunteersPage(ctx context.Context, page int) (Render, error) {
	all, err := r.store.ListVolunteers(ctx)
	if err != nil {
		return Render{}, err
	}
	rows := make([]string, len(all))
	for i, v := range all {
		rows[i] = formatVolunteerRow(v)
	}
	return renderListPage("Volunteers", listVolunteers, msgEmptyVolunteers, rows, page), nil
}

// renderBlacklistPage renders one page of the blacklist.
func (r *Router) renderBlacklistPage(ctx context.Context, page int) (Render, error) {
	all, err := r.store.ListBlacklist(ctx)
	if err != nil {
		return Render{}, err
	}
	rows := make([]string, len(all))
	for i, e := range all {
		rows[i] = formatBlacklistRow(e)
	}
	return renderListPage("Blacklist", listBlacklist, msgEmptyBlacklist, rows, page), nil
}

func formatVolunteerRow(v volunteer.Volunteer) string {
	return fmt.Sprintf("%d. %s | %s | %s | Lateness: %d | Warnings: %d",
		v.ID, v.FullName, v.Status, v.Contacts, v.LatenessCount, v.WarningsCount)
}

func formatBlacklistRow(e volunteer.BlacklistEntry) string {
	added := ""
	if !e.Added.IsZero() {
		added = e.Added.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%d. %s | Reason: %s | Added: %s", e.ID, e.FullName, e.Reason, added)
}

// renderListPage slices formatted rows into one page with prev/next
// affordances. An empty record set gets a distinct message and no controls.
func renderListPage(title, kind, emptyMsg string, rows []string, page int) Render {
	p := pager.Paginate(len(rows), page)
	if p.Empty() {
		return withMenu(emptyMsg, mainMenu())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (page %d/%d):\n", title, p.Index+1, p.TotalPages)
	for _, row := range rows[p.Start:p.End] {
		b.WriteString(row)
		b.WriteString("\n")
	}

	var nav []Button
	if p.HasPrev {
		nav = append(nav, Button{Label: "Previous", Token: pager.Token(kind, p.Index-1)})
	}
	if p.HasNext {
		nav = append(nav, Button{Label: "Next", Token: pager.Token(kind, p.Index+1)})
	}

	menu := mainMenu()
	if len(nav) > 0 {
		menu = &Menu{Rows: append([][]Button{nav}, mainMenu().Rows...)}
	}
	return withMenu(b.String(), menu)
}
