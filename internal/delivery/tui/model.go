package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ekoscanner/ekoscanner/internal/domain"
)

// Pipeline is the lookup pipeline as seen by the shell
type Pipeline interface {
	RunLookup(ctx context.Context, raw string) (domain.LookupState, error)
	SelectFromHistory(ctx context.Context, code string) (domain.LookupState, error)
	Reset() domain.LookupState
	State() domain.LookupState
}

// HistoryView lists scanned codes, most recent first
type HistoryView interface {
	Entries() []string
}

type focus int

const (
	focusInput focus = iota
	focusHistory
)

// maxHistoryRows bounds how many history entries are drawn at once
const maxHistoryRows = 10

type lookupDoneMsg struct {
	state domain.LookupState
	err   error
}

// Model is the single-screen shell: manual entry, product and summary panels,
// inline errors and the scan history.
type Model struct {
	ctx      context.Context
	pipeline Pipeline
	history  HistoryView
	events   *Events

	input   textinput.Model
	spinner spinner.Model
	styles  Styles

	focus   focus
	cursor  int
	entries []string
	state   domain.LookupState
	notice  string
	camera  string

	width int
}

// New creates the shell model. events may be nil when nothing publishes
// in the background.
func New(ctx context.Context, pipeline Pipeline, history HistoryView, events *Events) Model {
	styles := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Streckkod (t.ex. 7311870010970)"
	ti.Prompt = "› "
	ti.CharLimit = 64
	ti.Width = 40
	ti.PromptStyle = styles.Prompt
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		ctx:      ctx,
		pipeline: pipeline,
		history:  history,
		events:   events,
		input:    ti,
		spinner:  sp,
		styles:   styles,
		entries:  history.Entries(),
		state:    pipeline.State(),
		width:    80,
	}
}

// Init starts the cursor blink, the spinner and the event subscription.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.events != nil {
		cmds = append(cmds, m.events.wait())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		m.applyState(domain.LookupState(msg))
		return m, m.waitEvent()

	case codeMsg:
		m.input.SetValue(string(msg))
		next, cmd := m.submit(string(msg))
		return next, tea.Batch(cmd, m.waitEvent())

	case cameraErrMsg:
		m.camera = domain.UserMessage(msg.err)
		return m, m.waitEvent()

	case lookupDoneMsg:
		if errors.Is(msg.err, domain.ErrEmptyInput) {
			m.notice = domain.UserMessage(msg.err)
		}
		m.applyState(m.pipeline.State())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.events != nil {
			m.events.Close()
		}
		return m, tea.Quit

	case "tab":
		if m.focus == focusInput && len(m.entries) > 0 {
			m.focus = focusHistory
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case "esc":
		m.notice = ""
		m.applyState(m.pipeline.Reset())
		return m, nil

	case "enter":
		if m.focus == focusHistory {
			return m.selectHistory()
		}
		return m.submit(m.input.Value())
	}

	if m.focus == focusHistory {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit validates raw and starts a recorded lookup
func (m Model) submit(raw string) (Model, tea.Cmd) {
	if strings.TrimSpace(raw) == "" {
		m.notice = domain.UserMessage(domain.ErrEmptyInput)
		return m, nil
	}
	m.notice = ""

	ctx, pipeline := m.ctx, m.pipeline
	return m, func() tea.Msg {
		state, err := pipeline.RunLookup(ctx, raw)
		return lookupDoneMsg{state: state, err: err}
	}
}

func (m Model) selectHistory() (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return m, nil
	}
	code := m.entries[m.cursor]
	m.input.SetValue(code)
	m.notice = ""

	ctx, pipeline := m.ctx, m.pipeline
	return m, func() tea.Msg {
		state, err := pipeline.SelectFromHistory(ctx, code)
		return lookupDoneMsg{state: state, err: err}
	}
}

// applyState shows s unless the screen already holds a newer attempt or a
// later phase of the same one. Observer events can arrive after the
// lookup's own result.
func (m *Model) applyState(s domain.LookupState) {
	if s.Supersedes(m.state) {
		m.state = s
	}
	m.entries = m.history.Entries()
	if m.cursor >= len(m.entries) {
		m.cursor = max(len(m.entries)-1, 0)
	}
	if len(m.entries) == 0 && m.focus == focusHistory {
		m.focus = focusInput
		m.input.Focus()
	}
}

func (m Model) waitEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return m.events.wait()
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Ekoscanner"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(m.styles.Notice.Render(m.notice))
		b.WriteString("\n")
	}
	if m.camera != "" {
		b.WriteString(m.styles.Notice.Render(m.camera))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if body := m.renderState(); body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderHistory())
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter: sök • tab: historik • esc: rensa • ctrl+c: avsluta"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderState() string {
	s := m.state
	switch s.Phase {
	case domain.PhaseLoadingProduct:
		return fmt.Sprintf("%s Hämtar produkt...", m.spinner.View())
	case domain.PhaseProductError:
		return m.styles.Error.Render(domain.UserMessage(s.ProductErr))
	}

	if s.Product == nil {
		return ""
	}

	panelWidth := max(m.width-4, 20)
	product := m.styles.Panel.Width(panelWidth).Render(m.renderProduct(s.Product))

	var summary string
	switch s.Phase {
	case domain.PhaseLoadingSummary:
		summary = fmt.Sprintf("%s Hämtar AI-sammanfattning...", m.spinner.View())
	case domain.PhaseSummaryError:
		summary = m.styles.Error.Render(domain.UserMessage(s.SummaryErr))
	case domain.PhaseSummarized:
		summary = m.styles.Summary.Width(panelWidth).Render(s.Summary)
	}

	return lipgloss.JoinVertical(lipgloss.Left, product, summary)
}

func (m Model) renderProduct(p *domain.Product) string {
	rows := []string{
		m.row("Produkt", p.DisplayName()),
		m.row("Varumärke", p.DisplayBrand()),
		m.row("Kategorier", p.DisplayCategories()),
	}
	if p.ImageURL != "" {
		rows = append(rows, m.row("Bild", p.ImageURL))
	}
	return strings.Join(rows, "\n")
}

func (m Model) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Label.Render(label), m.styles.Value.Render(value))
}

func (m Model) renderHistory() string {
	header := m.styles.Unfocused.Render("Historik")
	if m.focus == focusHistory {
		header = m.styles.Focused.Render("Historik")
	}
	if len(m.entries) == 0 {
		return header + "\n" + m.styles.Muted.Render("  (tom)")
	}

	start := 0
	if m.cursor >= maxHistoryRows {
		start = m.cursor - maxHistoryRows + 1
	}
	end := min(start+maxHistoryRows, len(m.entries))

	lines := []string{header}
	for i := start; i < end; i++ {
		code := m.entries[i]
		if m.focus == focusHistory && i == m.cursor {
			lines = append(lines, m.styles.Selected.Render("› "+code))
		} else {
			lines = append(lines, "  "+code)
		}
	}
	if len(m.entries) > end {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("  … %d till", len(m.entries)-end)))
	}
	return strings.Join(lines, "\n")
}
