// Package tui renders the watchlist panel in a terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/usecase"
)

const (
	tickInterval = 500 * time.Millisecond
	toastTTL     = 4 * time.Second
)

type (
	changedMsg      struct{}
	notificationMsg entity.Notification
	tickMsg         time.Time
)

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func waitForNotification(ch <-chan entity.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return notificationMsg(<-ch)
	}
}

// Model is the bubbletea model of one watchlist panel beside a chart area.
type Model struct {
	ctx   context.Context
	panel *usecase.Panel
	notes <-chan entity.Notification

	changes     chan struct{}
	unsubscribe func()

	input textinput.Model

	width, height int
	cursor        int // highlighted watchlist row
	resultCursor  int // highlighted search result
	active        string
	openedAt      time.Time

	toast   *entity.Notification
	toastAt time.Time
}

// New creates a Model for panel. notes may be nil.
func New(ctx context.Context, panel *usecase.Panel, notes <-chan entity.Notification) Model {
	changes := make(chan struct{}, 1)
	unsubscribe := panel.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "Search symbols..."
	input.CharLimit = 32
	input.Width = panelWidth - 6

	m := Model{
		ctx:         ctx,
		panel:       panel,
		notes:       notes,
		changes:     changes,
		unsubscribe: unsubscribe,
		input:       input,
	}
	if panel.IsOpen() {
		m.openedAt = time.Now()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForChange(m.changes), waitForNotification(m.notes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncSearchRegion()
		return m, nil

	case changedMsg:
		m.clampCursors()
		m.syncSearchRegion()
		return m, waitForChange(m.changes)

	case notificationMsg:
		m.showToast(entity.Notification(msg))
		return m, waitForNotification(m.notes)

	case tickMsg:
		if m.toast != nil && time.Since(m.toastAt) > toastTTL {
			m.toast = nil
		}
		return m, tickCmd()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.shutdown()
		return m, tea.Quit
	case "w":
		if m.panel.Toggle() {
			m.openedAt = time.Now()
		}
		return m, nil
	case "esc":
		m.panel.Close()
		return m, nil
	}

	if !m.panel.IsOpen() {
		return m, nil
	}

	rows := m.panel.Rows()
	switch msg.String() {
	case "/":
		cmd := m.input.Focus()
		return m, cmd
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "enter":
		if sym, ok := m.cursorSymbol(rows); ok {
			m.selectSymbol(sym)
		}
	case "b":
		if sym, ok := m.cursorSymbol(rows); ok {
			m.quickOrder(sym, entity.SideBuy)
		}
	case "s":
		if sym, ok := m.cursorSymbol(rows); ok {
			m.quickOrder(sym, entity.SideSell)
		}
	case "d":
		if sym, ok := m.cursorSymbol(rows); ok {
			return m, m.removeCmd(sym)
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	search := m.panel.Search()
	switch msg.Type {
	case tea.KeyCtrlC:
		m.shutdown()
		return m, tea.Quit
	case tea.KeyEsc:
		m.input.Blur()
		search.Dismiss()
		return m, nil
	case tea.KeyUp:
		if m.resultCursor > 0 {
			m.resultCursor--
		}
		return m, nil
	case tea.KeyDown:
		st := search.State()
		if m.resultCursor < min(len(st.Results), maxResults)-1 {
			m.resultCursor++
		}
		return m, nil
	case tea.KeyEnter:
		st := search.State()
		if st.Searching || !st.ShowResults || len(st.Results) == 0 {
			return m, nil
		}
		cmd := m.selectResultCmd(st.Results[min(m.resultCursor, len(st.Results)-1)])
		return m, cmd
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != prev {
		m.resultCursor = 0
		search.SetQuery(v)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	m.syncSearchRegion()
	m.panel.PointerDown(msg.X, msg.Y)
	if !m.panel.IsOpen() {
		return m, nil
	}

	search := m.panel.Search()
	st := search.State()
	l := m.layout(st)
	if !l.search().Contains(msg.X, msg.Y) {
		m.input.Blur()
	}

	if !l.panel.Contains(msg.X, msg.Y) {
		m.panel.ClickBackdrop()
		return m, nil
	}

	if l.input.Contains(msg.X, msg.Y) {
		cmd := m.input.Focus()
		return m, cmd
	}
	if idx, ok := l.resultAt(msg.X, msg.Y, st); ok {
		cmd := m.selectResultCmd(st.Results[idx])
		return m, cmd
	}
	rows := m.panel.Rows()
	if idx, ok := l.rowAt(msg.X, msg.Y, len(rows)); ok {
		m.cursor = idx
		m.selectSymbol(rows[idx].Symbol)
	}
	return m, nil
}

func (m *Model) selectSymbol(symbol string) {
	m.active = symbol
	m.panel.SelectSymbol(symbol)
}

func (m *Model) quickOrder(symbol string, side entity.Side) {
	err := m.panel.QuickOrder(symbol, side)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrOrderInFlight):
		m.showToast(entity.Notification{
			Title:       "Order pending",
			Description: fmt.Sprintf("%s order is still being processed", symbol),
			Variant:     entity.VariantDefault,
		})
	default:
		slog.Warn("quick order rejected", "symbol", symbol, "side", side, "error", err)
		m.showToast(entity.Notification{Title: "Order error", Description: err.Error(), Variant: entity.VariantDestructive})
	}
}

// selectResultCmd clears the input at once and adds the result off the update loop.
func (m *Model) selectResultCmd(result entity.SearchResult) tea.Cmd {
	m.input.SetValue("")
	m.input.Blur()
	m.resultCursor = 0
	ctx, search := m.ctx, m.panel.Search()
	return func() tea.Msg {
		if _, err := search.Select(ctx, result); err != nil {
			slog.Warn("failed to add symbol from search", "symbol", result.Symbol, "error", err)
		}
		return nil
	}
}

func (m Model) removeCmd(symbol string) tea.Cmd {
	ctx, panel := m.ctx, m.panel
	return func() tea.Msg {
		if err := panel.Remove(ctx, symbol); err != nil {
			slog.Warn("failed to remove symbol", "symbol", symbol, "error", err)
		}
		return nil
	}
}

func (m *Model) showToast(n entity.Notification) {
	m.toast = &n
	m.toastAt = time.Now()
}

func (m *Model) shutdown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	m.panel.Dispose()
}

func (m Model) cursorSymbol(rows []entity.WatchlistRow) (string, bool) {
	if m.cursor < 0 || m.cursor >= len(rows) {
		return "", false
	}
	return rows[m.cursor].Symbol, true
}

func (m *Model) clampCursors() {
	if n := m.panel.Count(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if n := len(m.panel.Search().State().Results); m.resultCursor >= n {
		m.resultCursor = max(n-1, 0)
	}
}

func (m Model) layout(st entity.SearchState) layout {
	return computeLayout(m.panel.Mode(), m.width, m.height, st)
}

// syncSearchRegion tells the panel where the search box is drawn now,
// so pointer presses elsewhere dismiss the results.
func (m Model) syncSearchRegion() {
	m.panel.SetSearchRegion(m.layout(m.panel.Search().State()).search())
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	open := m.panel.IsOpen()
	if m.panel.Mode() == usecase.ModeOverlay {
		chart := m.renderChart(m.width, m.height)
		if !open {
			return chart
		}
		st := m.panel.Search().State()
		l := m.layout(st)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.renderPanel(l, st),
			lipgloss.WithWhitespaceChars("░"),
			lipgloss.WithWhitespaceForeground(backdropColor),
		)
	}

	if !open {
		return m.renderChart(m.width, m.height)
	}
	st := m.panel.Search().State()
	l := m.layout(st)
	chart := m.renderChart(m.width-l.panel.Width, m.height)
	return lipgloss.JoinHorizontal(lipgloss.Top, chart, m.renderPanel(l, st))
}

func (m Model) renderChart(width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}
	label := "no symbol selected"
	if m.active != "" {
		label = "Chart  " + m.active
	}
	help := dimStyle.Render("w watchlist  / search  b buy  s sell  d remove  q quit")
	body := lipgloss.Place(width-2, height-2, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, headerStyle.Render(label), help))
	return chartStyle.Render(body)
}

func (m Model) renderPanel(l layout, st entity.SearchState) string {
	inner := l.input.Width
	lines := make([]string, 0, l.panel.Height)

	header := headerStyle.Render("Watchlist") + " " + badgeStyle.Render(fmt.Sprintf(" %d ", m.panel.Count()))
	lines = append(lines, header+dimStyle.Render(padLeft(m.panel.Mode().String(), inner-lipgloss.Width(header))))
	lines = append(lines, m.input.View())
	lines = append(lines, m.renderResults(st, inner)...)
	lines = append(lines, colHeaderStyle.Render(padOrTrunc(rowLine("", "Symbol", "Bid", "Ask", "Chg", "Spread"), inner)))

	rows := m.panel.Rows()
	for i, r := range rows {
		if i >= l.rows.Height {
			break
		}
		lines = append(lines, m.renderRow(i, r, inner))
	}

	bodyHeight := max(l.panel.Height-2, 0)
	for len(lines) < bodyHeight-1 {
		lines = append(lines, "")
	}
	if len(lines) < bodyHeight {
		lines = append(lines, m.renderToast(inner))
	}
	if len(lines) > bodyHeight {
		lines = lines[:bodyHeight]
	}

	border := panelBorder
	if m.panel.Mode() == usecase.ModeOverlay && time.Since(m.openedAt) < m.panel.TransitionDuration() {
		border = panelBorderFaint
	}
	return border.Width(inner).Height(bodyHeight).Render(strings.Join(lines, "\n"))
}

func (m Model) renderResults(st entity.SearchState, width int) []string {
	switch {
	case st.Searching:
		return []string{dimStyle.Render("Searching...")}
	case !st.ShowResults:
		return nil
	case len(st.Results) == 0:
		return []string{dimStyle.Render("No symbols found")}
	}

	out := make([]string, 0, min(len(st.Results), maxResults))
	for i, r := range st.Results {
		if i >= maxResults {
			break
		}
		text := padOrTrunc(fmt.Sprintf(" %-8s %s  %s", r.Symbol, r.Name, r.CategoryName), width)
		if i == m.resultCursor {
			out = append(out, resultHlStyle.Render(text))
		} else {
			out = append(out, resultStyle.Render(text))
		}
	}
	return out
}

func (m Model) renderRow(i int, r entity.WatchlistRow, width int) string {
	marker := " "
	if r.Loading {
		marker = "~"
	}
	symbol := r.Symbol
	if symbol == m.active {
		symbol = "*" + symbol
	}
	text := padOrTrunc(rowLine(marker, symbol, r.Bid, r.Ask, "", r.Spread), width)

	// 変動バッジだけ色を付けるため、固定幅の列位置に差し込む
	badge := fmt.Sprintf("%9s", r.ChangeBadge)
	if r.HasQuote && r.ChangeBadge != entity.Placeholder {
		if r.Positive {
			badge = gainStyle.Render(badge)
		} else {
			badge = lossStyle.Render(badge)
		}
	}
	head, tail := splitAt(text, badgeColumn)
	line := head + badge + tail

	if i == m.cursor {
		return cursorStyle.Render(line)
	}
	return line
}

func (m Model) renderToast(width int) string {
	if m.toast == nil {
		return ""
	}
	text := m.toast.Title
	if m.toast.Description != "" {
		text += ": " + m.toast.Description
	}
	text = padOrTrunc(" "+text, width)
	if m.toast.Variant == entity.VariantDestructive {
		return errToastStyle.Render(text)
	}
	return toastStyle.Render(text)
}

// badgeColumn is where the change column starts in rowLine output.
const badgeColumn = 1 + 1 + 9 + 1 + 11 + 1 + 11 + 1

// rowLine lays out the watchlist columns. The change column is left blank
// for rows so that a styled badge can be spliced in at badgeColumn.
func rowLine(marker, symbol, bid, ask, change, spread string) string {
	return fmt.Sprintf("%1s %-9s %11s %11s %9s %8s", marker, symbol, bid, ask, change, spread)
}

// splitAt cuts s around the blank change column.
func splitAt(s string, col int) (string, string) {
	runes := []rune(s)
	if col >= len(runes) {
		return s, ""
	}
	end := min(col+9, len(runes))
	return string(runes[:col]), string(runes[end:])
}

func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

func padLeft(s string, width int) string {
	if width <= len(s) {
		return " " + s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
