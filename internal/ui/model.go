package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brickery/shelf/internal/brickery"
	"github.com/brickery/shelf/internal/membership"
	"github.com/brickery/shelf/internal/reorder"
	"github.com/brickery/shelf/internal/toggle"
)

// Options configure the UI.
type Options struct {
	Context  context.Context
	Gateway  brickery.Gateway
	Store    *membership.Store
	Toggles  *toggle.Controller
	Reorders *reorder.Controller
}

// Run starts the TUI and blocks until the user quits or the context cancels.
func Run(opts Options) error {
	m := newModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	m.cancelSub()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

type view int

const (
	viewWishlist view = iota
	viewLists
	viewListDetail
)

// Model is the single source of truth for the UI. All state transitions run
// on bubbletea's event loop; concurrent work (network requests, store
// changes) arrives as messages.
type Model struct {
	ctx      context.Context
	gw       brickery.Gateway
	store    *membership.Store
	toggles  *toggle.Controller
	reorders *reorder.Controller

	theme  Theme
	styles Styles
	keys   keyMap
	help   help.Model
	input  textinput.Model
	spin   spinner.Model

	current    view
	width      int
	height     int
	cursor     int
	activeList int64

	adding     bool
	menuFor    string
	menuCursor int

	busy    int
	notice  string
	loading map[int64]bool

	storeCh   <-chan struct{}
	cancelSub func()
}

func newModel(opts Options) Model {
	theme := defaultTheme()

	input := textinput.New()
	input.Placeholder = "set number, e.g. 10305"
	input.CharLimit = 24
	input.Width = 28

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	ch, cancel := opts.Store.Subscribe()

	return Model{
		ctx:       opts.Context,
		gw:        opts.Gateway,
		store:     opts.Store,
		toggles:   opts.Toggles,
		reorders:  opts.Reorders,
		theme:     theme,
		styles:    theme.Styles(),
		keys:      defaultKeyMap(),
		help:      help.New(),
		input:     input,
		spin:      spin,
		loading:   make(map[int64]bool),
		storeCh:   ch,
		cancelSub: cancel,
	}
}

// Messages.

type storeChangedMsg struct{}

type toggleSettledMsg struct{ result toggle.Result }

type reorderSettledMsg struct{ result reorder.Result }

type listDetailMsg struct {
	listID int64
	detail *brickery.ListDetail
	err    error
}

// Commands.

func watchStore(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

func awaitToggle(ch <-chan toggle.Result) tea.Cmd {
	return func() tea.Msg {
		return toggleSettledMsg{result: <-ch}
	}
}

func awaitReorder(ch <-chan reorder.Result) tea.Cmd {
	return func() tea.Msg {
		return reorderSettledMsg{result: <-ch}
	}
}

func (m Model) fetchListDetail(listID int64) tea.Cmd {
	ctx, gw := m.ctx, m.gw
	return func() tea.Msg {
		detail, err := gw.FetchListDetail(ctx, listID)
		return listDetailMsg{listID: listID, detail: detail, err: err}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return watchStore(m.storeCh)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case storeChangedMsg:
		m.clampCursor()
		return m, watchStore(m.storeCh)

	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case toggleSettledMsg:
		m.busy--
		if msg.result.Superseded {
			return m, nil
		}
		if msg.result.Err != nil {
			m.notice = settleNotice(msg.result.Err)
		}
		return m, nil

	case reorderSettledMsg:
		m.busy--
		if msg.result.Superseded {
			return m, nil
		}
		if msg.result.Err != nil {
			m.notice = settleNotice(msg.result.Err)
		}
		return m, nil

	case listDetailMsg:
		delete(m.loading, msg.listID)
		if msg.err != nil {
			m.notice = settleNotice(msg.err)
			return m, nil
		}
		setNums := make([]string, len(msg.detail.Items))
		info := make(map[string]brickery.SetInfo)
		for i, item := range msg.detail.Items {
			setNums[i] = brickery.CanonicalSetNum(item.SetNum)
			if item.SetInfo != (brickery.SetInfo{}) {
				info[setNums[i]] = item.SetInfo
			}
		}
		m.store.SetListItems(msg.listID, setNums)
		if len(info) > 0 {
			m.store.MergeSetInfo(info)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The quick-add input captures everything except its own controls.
	if m.adding {
		return m.handleQuickAddKey(msg)
	}
	if m.menuFor != "" {
		return m.handleMenuKey(msg)
	}

	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.QuickAdd):
		m.adding = true
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Wishlist):
		m.current = viewWishlist
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Lists):
		m.current = viewLists
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
		return m, nil
	}

	switch m.current {
	case viewWishlist:
		return m.handleWishlistKey(msg)
	case viewLists:
		return m.handleListsKey(msg)
	default:
		return m.handleDetailKey(msg)
	}
}

func (m Model) handleWishlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	order := m.store.WishlistOrder()
	setNum := ""
	if m.cursor < len(order) {
		setNum = order[m.cursor]
	}

	switch {
	case key.Matches(msg, m.keys.MoveUp):
		return m.moveSelection(reorder.ListRef{Wishlist: true}, order, -1)

	case key.Matches(msg, m.keys.MoveDown):
		return m.moveSelection(reorder.ListRef{Wishlist: true}, order, +1)

	case key.Matches(msg, m.keys.ToggleOwn):
		if setNum == "" {
			return m, nil
		}
		return m.dispatchToggle(membership.TargetOwned, 0, setNum)

	case key.Matches(msg, m.keys.Remove), key.Matches(msg, m.keys.ToggleWish):
		if setNum == "" {
			return m, nil
		}
		return m.dispatchToggle(membership.TargetWishlist, 0, setNum)

	case key.Matches(msg, m.keys.ListMenu):
		if setNum == "" {
			return m, nil
		}
		m.menuFor = setNum
		m.menuCursor = 0
		return m, nil
	}
	return m, nil
}

func (m Model) handleListsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	summaries := m.store.Summaries()
	if !key.Matches(msg, m.keys.Select) || m.cursor >= len(summaries) {
		return m, nil
	}

	picked := summaries[m.cursor]
	m.current = viewListDetail
	m.activeList = picked.ID
	m.cursor = 0
	if _, fetched := m.store.ListOrder(picked.ID); fetched || m.loading[picked.ID] {
		return m, nil
	}
	m.loading[picked.ID] = true
	return m, m.fetchListDetail(picked.ID)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	order, fetched := m.store.ListOrder(m.activeList)
	setNum := ""
	if fetched && m.cursor < len(order) {
		setNum = order[m.cursor]
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.current = viewLists
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.MoveUp):
		if !fetched {
			return m, nil
		}
		return m.moveSelection(reorder.ListRef{ID: m.activeList}, order, -1)

	case key.Matches(msg, m.keys.MoveDown):
		if !fetched {
			return m, nil
		}
		return m.moveSelection(reorder.ListRef{ID: m.activeList}, order, +1)

	case key.Matches(msg, m.keys.Remove):
		if setNum == "" {
			return m, nil
		}
		return m.dispatchToggle(membership.TargetList, m.activeList, setNum)

	case key.Matches(msg, m.keys.ToggleOwn):
		if setNum == "" {
			return m, nil
		}
		return m.dispatchToggle(membership.TargetOwned, 0, setNum)

	case key.Matches(msg, m.keys.ToggleWish):
		if setNum == "" {
			return m, nil
		}
		return m.dispatchToggle(membership.TargetWishlist, 0, setNum)
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil

	case "enter", "ctrl+o":
		raw := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		if raw == "" {
			return m, nil
		}
		setNum := brickery.CanonicalSetNum(raw)

		target := membership.TargetWishlist
		if msg.String() == "ctrl+o" {
			target = membership.TargetOwned
		}
		if m.store.Effective(target, 0, setNum) {
			m.notice = fmt.Sprintf("%s is already in %s", setNum, target)
			return m, nil
		}
		return m.dispatchToggle(target, 0, setNum)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.menuEntries()

	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.ListMenu):
		m.menuFor = ""
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.menuCursor < len(entries)-1 {
			m.menuCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.menuCursor >= len(entries) {
			return m, nil
		}
		picked := entries[m.menuCursor]
		return m.dispatchToggle(picked.target, picked.listID, m.menuFor)
	}
	return m, nil
}

// menuEntry is one row of the add-to-list menu: the two system collections
// followed by every custom list.
type menuEntry struct {
	label  string
	target membership.Target
	listID int64
}

func (m Model) menuEntries() []menuEntry {
	entries := []menuEntry{
		{label: "Owned", target: membership.TargetOwned},
		{label: "Wishlist", target: membership.TargetWishlist},
	}
	for _, summary := range m.store.Summaries() {
		entries = append(entries, menuEntry{
			label:  summary.Title,
			target: membership.TargetList,
			listID: summary.ID,
		})
	}
	return entries
}

// dispatchToggle fires a toggle and tracks it for the busy indicator.
func (m Model) dispatchToggle(target membership.Target, listID int64, setNum string) (tea.Model, tea.Cmd) {
	ch := m.toggles.Toggle(m.ctx, target, listID, setNum)
	m.busy++
	return m, tea.Batch(awaitToggle(ch), m.spin.Tick)
}

// moveSelection moves the selected row by delta and persists the new order.
// The cursor follows the moved item.
func (m Model) moveSelection(ref reorder.ListRef, order []string, delta int) (tea.Model, tea.Cmd) {
	moved, ok := moveItem(order, m.cursor, m.cursor+delta)
	if !ok {
		return m, nil
	}
	m.cursor += delta
	ch := m.reorders.Reorder(m.ctx, ref, moved)
	m.busy++
	return m, tea.Batch(awaitReorder(ch), m.spin.Tick)
}

// rowCount returns the number of selectable rows in the current view.
func (m Model) rowCount() int {
	switch m.current {
	case viewWishlist:
		return len(m.store.WishlistOrder())
	case viewLists:
		return len(m.store.Summaries())
	default:
		order, _ := m.store.ListOrder(m.activeList)
		return len(order)
	}
}

func (m *Model) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if n := len(m.menuEntries()); m.menuCursor >= n {
		m.menuCursor = n - 1
	}
}

// moveItem returns a copy of order with the item at from moved to to. It
// reports false when the move falls outside the list.
func moveItem(order []string, from, to int) ([]string, bool) {
	if from < 0 || from >= len(order) || to < 0 || to >= len(order) || from == to {
		return nil, false
	}
	moved := make([]string, len(order))
	copy(moved, order)
	moved[from], moved[to] = moved[to], moved[from]
	return moved, true
}

// settleNotice converts a settle error into a short user-facing notice.
func settleNotice(err error) string {
	if errors.Is(err, brickery.ErrAuthRequired) {
		return "sign-in token required; set token in ~/.config/shelf/config.toml"
	}
	var apiErr *brickery.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case brickery.KindAuth:
			return "session expired; update your token"
		case brickery.KindForbidden:
			return "not allowed: " + apiErr.Message
		case brickery.KindNotFound:
			return "no longer available"
		case brickery.KindValidation:
			return "rejected: " + apiErr.Message
		case brickery.KindTransient:
			return "network trouble; change was undone"
		}
	}
	return fmt.Sprintf("request failed: %v", err)
}
