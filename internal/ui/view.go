package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTiles())
	b.WriteString("\n\n")

	switch m.current {
	case viewWishlist:
		b.WriteString(m.renderWishlist())
	case viewLists:
		b.WriteString(m.renderLists())
	default:
		b.WriteString(m.renderListDetail())
	}

	if m.menuFor != "" {
		b.WriteString("\n")
		b.WriteString(m.renderListMenu())
	}
	if m.adding {
		b.WriteString("\n")
		b.WriteString(m.renderQuickAdd())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader draws the top bar: logo, sync health, busy indicator.
func (m Model) renderHeader() string {
	parts := []string{m.styles.Logo.Render("shelf")}

	if !m.gw.Authenticated() {
		parts = append(parts, m.styles.WarningText.Render("browsing only (no token)"))
	} else if st := m.store.Sync(); st.IsOffline() {
		parts = append(parts, m.styles.DangerText.Render("OFFLINE"),
			m.styles.MutedText.Render("retrying..."))
	} else if !st.LastSync.IsZero() {
		parts = append(parts, m.styles.MutedText.Render("synced "+st.LastSync.Format("15:04:05")))
	}

	if m.busy > 0 {
		parts = append(parts, m.spin.View()+m.styles.MutedText.Render("saving"))
	}
	if m.notice != "" {
		parts = append(parts, m.styles.DangerText.Render(m.notice))
	}

	return m.styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

// renderTiles draws the account summary: owned, wishlisted, list counts.
func (m Model) renderTiles() string {
	owned, wishlisted, lists := m.store.Counts()

	tile := func(label string, count int, active bool) string {
		style := m.styles.Tile
		if active {
			style = style.BorderForeground(lipgloss.Color(m.theme.Accent))
		}
		return style.Render(fmt.Sprintf("%s %s",
			m.styles.AccentText.Render(fmt.Sprintf("%d", count)),
			m.styles.MutedText.Render(label)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("owned", owned, false),
		tile("wishlist", wishlisted, m.current == viewWishlist),
		tile("lists", lists, m.current != viewWishlist),
	)
}

func (m Model) renderWishlist() string {
	order := m.store.WishlistOrder()
	if len(order) == 0 {
		return m.styles.MutedText.Render("  Wishlist is empty. Press a to add a set.")
	}

	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render("  Wishlist") + "\n")
	for i, setNum := range order {
		b.WriteString(m.renderSetRow(i, setNum, m.current == viewWishlist && i == m.cursor))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderLists() string {
	summaries := m.store.Summaries()
	if len(summaries) == 0 {
		return m.styles.MutedText.Render("  No lists yet.")
	}

	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render("  My lists") + "\n")
	for i, summary := range summaries {
		line := fmt.Sprintf("  %s  %s", summary.Title,
			m.styles.MutedText.Render(fmt.Sprintf("%d sets", summary.ItemsCount)))
		if summary.IsPublic {
			line += "  " + m.styles.InfoText.Render("public")
		}
		if i == m.cursor {
			line = m.styles.Selected.Width(m.width).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderListDetail() string {
	title := fmt.Sprintf("list %d", m.activeList)
	for _, summary := range m.store.Summaries() {
		if summary.ID == m.activeList {
			title = summary.Title
		}
	}

	order, fetched := m.store.ListOrder(m.activeList)
	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render("  "+title) + "\n")

	switch {
	case !fetched:
		b.WriteString(m.styles.MutedText.Render("  Loading..."))
	case len(order) == 0:
		b.WriteString(m.styles.MutedText.Render("  This list is empty."))
	default:
		for i, setNum := range order {
			b.WriteString(m.renderSetRow(i, setNum, i == m.cursor))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderSetRow draws one set line: position, number, name, membership badges.
func (m Model) renderSetRow(index int, setNum string, selected bool) string {
	name := ""
	if info, ok := m.store.SetInfoFor(setNum); ok && info.Name != "" {
		name = info.Name
		if info.Year > 0 {
			name += fmt.Sprintf(" (%d)", info.Year)
		}
	}

	badges := make([]string, 0, 2)
	if m.store.IsOwned(setNum) {
		badges = append(badges, m.styles.SuccessText.Render("owned"))
	}
	if m.store.IsWishlisted(setNum) {
		badges = append(badges, m.styles.InfoText.Render("wishlist"))
	}

	line := fmt.Sprintf("  %2d. %-10s %s", index+1, setNum, name)
	if len(badges) > 0 {
		line += "  " + strings.Join(badges, " ")
	}
	if selected {
		return m.styles.Selected.Width(m.width).Render(line)
	}
	return line
}

// renderListMenu draws the add-to-list overlay for the selected set: the two
// system collections, then every custom list, with membership checkmarks.
func (m Model) renderListMenu() string {
	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render("Add "+m.menuFor+" to...") + "\n")
	for i, entry := range m.menuEntries() {
		mark := "[ ]"
		if m.store.Effective(entry.target, entry.listID, m.menuFor) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, entry.label)
		if i == m.menuCursor {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(m.styles.FaintText.Render("enter toggle · esc close"))
	return m.styles.Menu.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderQuickAdd() string {
	return m.styles.Menu.Render(
		m.styles.AccentText.Render("Add set") + "\n" +
			m.input.View() + "\n" +
			m.styles.FaintText.Render("enter wishlist · ctrl+o owned · esc cancel"))
}

func (m Model) renderFooter() string {
	return m.styles.Footer.Width(m.width).Render(m.help.View(m.keys))
}
