// Package ui renders an editable grid in the terminal with Bubble Tea.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/gridedit/pkg/disable"
	"github.com/vanderheijden86/gridedit/pkg/edit"
	"github.com/vanderheijden86/gridedit/pkg/footer"
	"github.com/vanderheijden86/gridedit/pkg/model"
	"github.com/vanderheijden86/gridedit/pkg/rows"
	"github.com/vanderheijden86/gridedit/pkg/schema"
	"github.com/vanderheijden86/gridedit/pkg/sheet"
)

const (
	defaultColumnWidth = 12
	// title, header, footer and status lines
	chromeHeight = 4
)

// FooterSpec carries the host's totals row.
type FooterSpec struct {
	Label  string
	Values map[string]any
}

// Options configures a GridModel.
type Options struct {
	Title     string
	Sheet     *sheet.Sheet
	Columns   *schema.Registry
	Policy    disable.Policy
	Expansion *rows.ExpansionState

	// Footer is optional; nil hides the totals row.
	Footer  *FooterSpec
	Metrics *edit.Metrics
	Theme   Theme
}

// ReloadMsg delivers records re-read from disk.
type ReloadMsg struct {
	Records []model.Record
	Err     error
}

// gridLine is one rendered line: a group label or a row.
type gridLine struct {
	group string
	label bool
	row   rows.FlatRow
	last  bool
}

// GridModel is the Bubble Tea model of the grid.
type GridModel struct {
	title     string
	sheet     *sheet.Sheet
	ctl       *edit.Controller
	cols      []schema.Column
	expansion *rows.ExpansionState
	footer    *FooterSpec
	theme     Theme

	lines  []gridLine
	cursor int
	col    int

	editing  bool
	editCell edit.CellKey
	input    textinput.Model

	// drafts keeps rejected text visible on the cell until it is edited again
	drafts map[edit.CellKey]string

	viewport viewport.Model
	showHelp bool
	helpText string
	status   string
	width    int
	height   int
	readClip func() (string, error)
	quitting bool
}

// NewGridModel builds the grid over a sheet.
func NewGridModel(opts Options) GridModel {
	if opts.Theme.Renderer == nil {
		opts.Theme = DefaultTheme(nil)
	}
	if opts.Expansion == nil {
		opts.Expansion = rows.NewExpansionState("", 1)
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256

	m := GridModel{
		title:     opts.Title,
		sheet:     opts.Sheet,
		cols:      opts.Columns.Columns(),
		expansion: opts.Expansion,
		footer:    opts.Footer,
		theme:     opts.Theme,
		input:     ti,
		drafts:    make(map[edit.CellKey]string),
		viewport:  viewport.New(80, 20),
		readClip:  clipboard.ReadAll,
	}
	m.ctl = edit.New(edit.Config{
		Columns: opts.Columns,
		Policy:  opts.Policy,
		OnEdit:  opts.Sheet.ApplyEdit,
		Metrics: opts.Metrics,
	})
	m.helpText = renderHelpMarkdown(opts.Theme, 60)
	m.rebuild()
	return m
}

// Controller exposes the edit controller driving the grid.
func (m GridModel) Controller() *edit.Controller { return m.ctl }

// Init implements tea.Model.
func (m GridModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - chromeHeight
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}

	case ReloadMsg:
		m.reload(msg)

	case tea.KeyMsg:
		switch {
		case m.showHelp:
			switch msg.String() {
			case "?", "esc", "q":
				m.showHelp = false
			case "ctrl+c":
				m.quitting = true
				return m, tea.Quit
			}
		case m.editing:
			cmd = m.updateEditing(msg)
		default:
			cmd = m.updateBrowsing(msg)
		}

	default:
		if m.editing {
			m.input, cmd = m.input.Update(msg)
		}
	}

	m.syncViewport()
	return m, cmd
}

func (m *GridModel) updateBrowsing(msg tea.KeyMsg) tea.Cmd {
	m.status = ""
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return tea.Quit
	case "?":
		m.showHelp = true
	case "up", "k":
		m.MoveUp()
	case "down", "j":
		m.MoveDown()
	case "left", "h", "shift+tab":
		m.moveColumn(-1)
	case "right", "l", "tab":
		m.moveColumn(1)
	case "g", "home":
		m.JumpToTop()
	case "G", "end":
		m.JumpToBottom()
	case "pgdown", "ctrl+d":
		m.page(1)
	case "pgup", "ctrl+u":
		m.page(-1)
	case "enter", "e":
		return m.beginEdit()
	case " ":
		m.ToggleExpand()
	case "E":
		m.expansion.ExpandAll(m.sheet.Snapshot().Tree())
		m.rebuild()
	case "C":
		m.expansion.CollapseAll(m.sheet.Snapshot().Tree())
		m.rebuild()
	case "a":
		m.AddSubRow()
	case "x":
		m.RemoveRow()
	}
	return nil
}

func (m *GridModel) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		m.finishEdit()
		return nil
	case "tab":
		m.finishEdit()
		m.moveColumn(1)
		return nil
	case "shift+tab":
		m.finishEdit()
		m.moveColumn(-1)
		return nil
	case "ctrl+c":
		m.finishEdit()
		m.quitting = true
		return tea.Quit
	case "ctrl+v":
		m.pasteClipboard()
		return nil
	}

	if msg.Paste {
		m.insertPaste(string(msg.Runes))
		return nil
	}

	if !m.allowKeys(msg) {
		m.status = fmt.Sprintf("%q not allowed in a number", msg.String())
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctl.Input(m.editCell, after)
	}
	return cmd
}

// allowKeys runs the key filter. Terminals deliver fast typing and
// unbracketed pastes as one message holding several runes; each rune is
// checked as its own keystroke and the batch passes only if all do.
func (m *GridModel) allowKeys(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) < 2 {
		return m.ctl.KeyDown(m.editCell, KeyFromTea(msg))
	}
	for _, r := range msg.Runes {
		if !m.ctl.KeyDown(m.editCell, edit.Key{Name: string(r)}) {
			return false
		}
	}
	return true
}

// beginEdit focuses the selected cell.
func (m *GridModel) beginEdit() tea.Cmd {
	ln, ok := m.selectedLine()
	if !ok || len(m.cols) == 0 {
		return nil
	}
	cell := m.cellKey(ln, m.col)
	if m.ctl.Disabled(cell) {
		m.status = "cell is disabled"
		return nil
	}

	displayed := m.displayText(cell, ln.row.Node)
	m.ctl.Focus(cell, displayed)
	if !m.ctl.Editing(cell) {
		return nil
	}

	m.editing = true
	m.editCell = cell
	m.input.SetValue(displayed)
	m.input.CursorEnd()
	m.input.Width = m.columnWidth(m.col) - 1
	return m.input.Focus()
}

// finishEdit blurs the cell being edited.
func (m *GridModel) finishEdit() {
	if !m.editing {
		return
	}
	text := m.input.Value()
	cell := m.editCell
	m.editing = false
	m.input.Blur()

	if m.ctl.Blur(cell, text) {
		delete(m.drafts, cell)
		m.rebuild()
		return
	}
	if m.ctl.Errors().HasError(cell) {
		m.drafts[cell] = text
	}
}

func (m *GridModel) pasteClipboard() {
	text, err := m.readClip()
	if err != nil {
		m.status = fmt.Sprintf("clipboard: %v", err)
		return
	}
	m.insertPaste(text)
}

func (m *GridModel) insertPaste(text string) {
	if !m.ctl.Paste(m.editCell, text) {
		m.status = "paste rejected: not a number"
		return
	}
	r := []rune(m.input.Value())
	pos := m.input.Position()
	if pos > len(r) {
		pos = len(r)
	}
	m.input.SetValue(string(r[:pos]) + text + string(r[pos:]))
	m.input.SetCursor(pos + len([]rune(text)))
	m.ctl.Input(m.editCell, m.input.Value())
}

func (m *GridModel) reload(msg ReloadMsg) {
	if msg.Err != nil {
		m.status = fmt.Sprintf("reload failed: %v", msg.Err)
		return
	}
	tree, err := rows.BuildTree(msg.Records)
	if err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	if err := m.sheet.Replace(tree); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	m.expansion.Forget(tree)
	m.rebuild()
	m.status = "reloaded"
}

// ToggleExpand flips the selected row's sub-rows.
func (m *GridModel) ToggleExpand() {
	ln, ok := m.selectedLine()
	if !ok || ln.row.Node.IsLeaf() {
		return
	}
	m.expansion.Toggle(ln.row.Node, ln.row.Depth)
	m.rebuild()
}

// AddSubRow inserts a sub-row under the selected row and selects it.
func (m *GridModel) AddSubRow() {
	if !m.sheet.CanAdd() {
		return
	}
	ln, ok := m.selectedLine()
	if !ok {
		return
	}
	id, added := m.sheet.AddRow(ln.row.Node.ID)
	if !added {
		return
	}
	m.expansion.Set(ln.row.Node.ID, true)
	m.rebuild()
	m.SelectByID(id)
}

// RemoveRow removes the selected row and its sub-rows.
func (m *GridModel) RemoveRow() {
	if !m.sheet.CanRemove() {
		return
	}
	ln, ok := m.selectedLine()
	if !ok {
		return
	}
	if !m.sheet.RemoveRow(ln.row.Node.ID) {
		return
	}
	m.expansion.Forget(m.sheet.Snapshot().Tree())
	m.rebuild()
}

// rebuild republishes the sheet's rows to the controller and recomputes the
// visible lines, keeping the selection on the same row when it survives.
func (m *GridModel) rebuild() {
	selected := m.SelectedID()

	snap := m.sheet.Snapshot()
	m.ctl.SetSnapshot(snap)
	m.ctl.Prune()
	errs := m.ctl.Errors()
	for cell := range m.drafts {
		if !errs.Known(cell) {
			delete(m.drafts, cell)
		}
	}

	m.lines = nil
	for _, g := range snap.Groups() {
		if g.Labeled() {
			m.lines = append(m.lines, gridLine{group: g.Key, label: true})
		}
		for _, fr := range rows.Flatten(g.Rows, m.expansion) {
			m.lines = append(m.lines, gridLine{
				group: g.Key,
				row:   fr,
				last:  isLastSibling(snap, g, fr),
			})
		}
	}

	if selected == "" || !m.SelectByID(selected) {
		m.clampCursor()
	}
	m.syncViewport()
}

func isLastSibling(snap *rows.Snapshot, g rows.Group, fr rows.FlatRow) bool {
	siblings := g.Rows
	if fr.ParentID != "" {
		parent, ok := snap.Find(fr.ParentID)
		if !ok {
			return true
		}
		siblings = parent.Children
	}
	return fr.Index == len(siblings)-1
}

// SelectedID returns the id of the selected row, or "".
func (m *GridModel) SelectedID() string {
	if ln, ok := m.selectedLine(); ok {
		return ln.row.Node.ID
	}
	return ""
}

// SelectedColumn returns the key of the selected column.
func (m *GridModel) SelectedColumn() string {
	if m.col < 0 || m.col >= len(m.cols) {
		return ""
	}
	return schema.KeyOf(m.cols[m.col])
}

// SelectedCell returns the address of the selected cell.
func (m *GridModel) SelectedCell() (edit.CellKey, bool) {
	ln, ok := m.selectedLine()
	if !ok || len(m.cols) == 0 {
		return edit.CellKey{}, false
	}
	return m.cellKey(ln, m.col), true
}

// Editing reports whether a cell is being edited.
func (m *GridModel) Editing() bool { return m.editing }

// EditText returns the edit buffer.
func (m *GridModel) EditText() string { return m.input.Value() }

// Status returns the transient status message.
func (m *GridModel) Status() string { return m.status }

// RowCount returns the number of visible rows, labels excluded.
func (m *GridModel) RowCount() int {
	n := 0
	for _, ln := range m.lines {
		if !ln.label {
			n++
		}
	}
	return n
}

// SelectByID moves the cursor to the row with the given id.
func (m *GridModel) SelectByID(id string) bool {
	for i, ln := range m.lines {
		if !ln.label && ln.row.Node.ID == id {
			m.cursor = i
			return true
		}
	}
	return false
}

// MoveDown selects the next row, skipping group labels.
func (m *GridModel) MoveDown() {
	for i := m.cursor + 1; i < len(m.lines); i++ {
		if !m.lines[i].label {
			m.cursor = i
			return
		}
	}
}

// MoveUp selects the previous row, skipping group labels.
func (m *GridModel) MoveUp() {
	for i := m.cursor - 1; i >= 0; i-- {
		if !m.lines[i].label {
			m.cursor = i
			return
		}
	}
}

// JumpToTop selects the first row.
func (m *GridModel) JumpToTop() {
	m.cursor = 0
	m.clampCursor()
}

// JumpToBottom selects the last row.
func (m *GridModel) JumpToBottom() {
	m.cursor = len(m.lines) - 1
	m.clampCursor()
}

func (m *GridModel) page(dir int) {
	size := m.viewport.Height / 2
	if size < 1 {
		size = 5
	}
	for i := 0; i < size; i++ {
		if dir > 0 {
			m.MoveDown()
		} else {
			m.MoveUp()
		}
	}
}

func (m *GridModel) moveColumn(delta int) {
	if len(m.cols) == 0 {
		return
	}
	m.col += delta
	if m.col < 0 {
		m.col = 0
	}
	if m.col >= len(m.cols) {
		m.col = len(m.cols) - 1
	}
}

// clampCursor puts the cursor on a row line, preferring the nearest one
// below.
func (m *GridModel) clampCursor() {
	if len(m.lines) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	for i := m.cursor; i < len(m.lines); i++ {
		if !m.lines[i].label {
			m.cursor = i
			return
		}
	}
	for i := m.cursor; i >= 0; i-- {
		if !m.lines[i].label {
			m.cursor = i
			return
		}
	}
}

func (m *GridModel) selectedLine() (gridLine, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return gridLine{}, false
	}
	ln := m.lines[m.cursor]
	if ln.label || ln.row.Node == nil {
		return gridLine{}, false
	}
	return ln, true
}

func (m *GridModel) cellKey(ln gridLine, col int) edit.CellKey {
	return edit.CellKey{
		Group:  ln.group,
		RowID:  ln.row.Node.ID,
		Column: schema.KeyOf(m.cols[col]),
	}
}

// displayText is what a cell shows when not being edited.
func (m *GridModel) displayText(cell edit.CellKey, n *model.RowNode) string {
	if draft, ok := m.drafts[cell]; ok {
		return draft
	}
	return model.FormatValue(n.Field(cell.Column))
}

func (m *GridModel) columnWidth(i int) int {
	s := m.cols[i].Sizing
	w := s.Width
	if w <= 0 {
		w = defaultColumnWidth
		if title := runewidth.StringWidth(m.cols[i].Title()); title > w {
			w = title
		}
	}
	if s.MinWidth > 0 && w < s.MinWidth {
		w = s.MinWidth
	}
	if s.MaxWidth > 0 && w > s.MaxWidth {
		w = s.MaxWidth
	}
	if w < 2 {
		w = 2
	}
	return w
}

// gutterWidth fits the deepest tree prefix currently visible.
func (m *GridModel) gutterWidth() int {
	depth := 0
	for _, ln := range m.lines {
		if !ln.label && ln.row.Depth > depth {
			depth = ln.row.Depth
		}
	}
	return depth*3 + 2
}

func (m *GridModel) syncViewport() {
	m.viewport.SetContent(m.renderBody())
	if m.viewport.Height <= 0 {
		return
	}
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// View implements tea.Model.
func (m GridModel) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var sb strings.Builder
	if m.title != "" {
		sb.WriteString(m.theme.Header.Render(m.title))
		sb.WriteString("\n")
	}
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	if m.footer != nil {
		sb.WriteString(m.renderFooter())
		sb.WriteString("\n")
	}
	sb.WriteString(m.renderStatus())
	return sb.String()
}

func (m *GridModel) renderHeader() string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", m.gutterWidth()))
	for i, col := range m.cols {
		sb.WriteString(" ")
		sb.WriteString(m.theme.Header.Render(fit(col.Title(), m.columnWidth(i), false)))
	}
	return sb.String()
}

func (m *GridModel) renderBody() string {
	if len(m.lines) == 0 {
		return m.theme.Status.Render("No rows.")
	}
	var sb strings.Builder
	for i, ln := range m.lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		if ln.label {
			sb.WriteString(m.theme.Label.Render(ln.group))
			continue
		}
		sb.WriteString(m.renderRow(i, ln))
	}
	return sb.String()
}

func (m *GridModel) renderRow(i int, ln gridLine) string {
	var sb strings.Builder
	sb.WriteString(m.renderPrefix(ln))
	for c := range m.cols {
		sb.WriteString(" ")
		sb.WriteString(m.renderCell(i, ln, c))
	}
	return sb.String()
}

// renderPrefix draws branch characters and the expand indicator.
func (m *GridModel) renderPrefix(ln gridLine) string {
	var prefix string
	if ln.row.Depth > 0 {
		prefix = strings.Repeat("   ", ln.row.Depth-1)
		if ln.last {
			prefix += "└─ "
		} else {
			prefix += "├─ "
		}
	}
	indicator := "•"
	if !ln.row.Node.IsLeaf() {
		if ln.row.Expanded {
			indicator = "▾"
		} else {
			indicator = "▸"
		}
	}
	r := m.theme.Renderer
	out := r.NewStyle().Foreground(m.theme.Muted).Render(prefix) +
		r.NewStyle().Foreground(m.theme.Secondary).Render(indicator)
	pad := m.gutterWidth() - runewidth.StringWidth(prefix) - runewidth.StringWidth(indicator)
	if pad > 0 {
		out += strings.Repeat(" ", pad)
	}
	return out
}

func (m *GridModel) renderCell(i int, ln gridLine, c int) string {
	cell := m.cellKey(ln, c)
	width := m.columnWidth(c)
	selected := i == m.cursor && c == m.col

	if selected && m.editing && cell == m.editCell {
		return m.theme.Renderer.NewStyle().Width(width).MaxWidth(width).Render(m.input.View())
	}

	text := fit(m.displayText(cell, ln.row.Node), width, schema.IsNumeric(m.cols[c]))
	style := m.theme.Renderer.NewStyle()
	switch {
	case m.ctl.Disabled(cell):
		style = m.theme.Disabled
	case m.ctl.Errors().HasError(cell):
		style = m.theme.Invalid
	}
	if selected {
		style = style.Reverse(true)
	}
	return style.Render(text)
}

func (m *GridModel) renderFooter() string {
	cells := footer.Row(m.cols, m.footer.Values, m.footer.Label)
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", m.gutterWidth()))
	for i, fc := range cells {
		sb.WriteString(" ")
		numeric := !fc.Label && schema.IsNumeric(m.cols[i])
		sb.WriteString(m.theme.Footer.Render(fit(footer.Display(fc), m.columnWidth(i), numeric)))
	}
	return sb.String()
}

func (m *GridModel) renderStatus() string {
	errs := m.ctl.Errors()
	parts := []string{
		humanize.Comma(int64(m.RowCount())) + " rows",
	}
	if n := len(errs.Errors()); n > 0 {
		parts = append(parts, m.theme.Invalid.Render(fmt.Sprintf("%d invalid", n)))
	}
	if cell, ok := m.SelectedCell(); ok && errs.HasError(cell) {
		parts = append(parts, m.theme.Invalid.Render(cell.Column+": "+errs.Message(cell)))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "? help")
	return m.theme.Status.Render(strings.Join(parts, " · "))
}

func (m *GridModel) renderHelp() string {
	r := m.theme.Renderer
	width := 64
	if m.width > 0 && width > m.width-4 {
		width = m.width - 4
	}
	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Secondary).
		Padding(0, 1).
		Width(width).
		Render(m.helpText)
	if m.width > 0 && m.height > 0 {
		return r.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// fit pads or truncates s to exactly width cells.
func fit(s string, width int, right bool) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// KeyFromTea converts a Bubble Tea key event for the edit controller.
func KeyFromTea(msg tea.KeyMsg) edit.Key {
	if msg.Type == tea.KeyRunes && !msg.Alt {
		return edit.Key{Name: string(msg.Runes)}
	}
	return edit.ParseKey(msg.String())
}

// renderHelpMarkdown renders the key reference with glamour, falling back to
// the raw markdown when rendering fails.
func renderHelpMarkdown(theme Theme, wrap int) string {
	style := "light"
	if theme.Renderer.HasDarkBackground() {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimSpace(out)
}
