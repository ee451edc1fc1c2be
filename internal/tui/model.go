package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"checklist/internal/api"
	"checklist/internal/logging"
)

const (
	defaultCallTimeout = 5 * time.Second
	titleCharLimit     = 500
)

type todosLoadedMsg struct {
	todos []api.Todo
	err   error
}

type todoCreatedMsg struct {
	todo *api.Todo
	err  error
}

type todoUpdatedMsg struct {
	id   int64
	todo *api.Todo
	err  error
}

type todoDeletedMsg struct {
	id  int64
	err error
}

// Model is the bubbletea model behind "checklist ui".
type Model struct {
	ctx     context.Context
	backend Backend
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	board      Board
	loaded     bool
	cursor     int
	input      textinput.Model
	focusInput bool
	creating   bool
	inflight   map[int64]bool

	notice      string
	noticeError bool

	progress progress.Model
	help     help.Model
	keys     keyMap
}

// NewModel builds a model that talks to backend. A nil logger discards output.
func NewModel(ctx context.Context, backend Backend, logger *slog.Logger, timeout time.Duration) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "What needs doing?"
	input.CharLimit = titleCharLimit
	input.Focus()

	return &Model{
		ctx:        ctx,
		backend:    backend,
		logger:     logging.NewComponentLogger(logger, "tui"),
		timeout:    timeout,
		now:        time.Now,
		input:      input,
		focusInput: true,
		inflight:   make(map[int64]bool),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Board exposes the mirrored list.
func (m *Model) Board() *Board {
	return &m.board
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCmd())
}

// canSubmit reports whether the add action is enabled.
func (m *Model) canSubmit() bool {
	return !m.creating && strings.TrimSpace(m.input.Value()) != ""
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.progress.Width = width
		m.input.Width = width
		m.help.Width = msg.Width
		return m, nil

	case todosLoadedMsg:
		if msg.err != nil {
			m.fail("Could not load todos", "tui_load_failed", msg.err)
			return m, nil
		}
		m.board.Replace(msg.todos)
		m.loaded = true
		m.clampCursor()
		return m, nil

	case todoCreatedMsg:
		m.creating = false
		if msg.err != nil {
			m.fail("Could not add todo", "tui_create_failed", msg.err)
			return m, nil
		}
		m.board.Add(*msg.todo)
		m.input.SetValue("")
		m.setNotice("Added “" + msg.todo.Title + "”")
		return m, nil

	case todoUpdatedMsg:
		delete(m.inflight, msg.id)
		if msg.err != nil {
			m.fail("Could not update todo", "tui_update_failed", msg.err, logging.TodoID(msg.id))
			return m, nil
		}
		m.board.Apply(*msg.todo)
		m.clearNotice()
		return m, nil

	case todoDeletedMsg:
		delete(m.inflight, msg.id)
		if msg.err != nil {
			m.fail("Could not delete todo", "tui_delete_failed", msg.err, logging.TodoID(msg.id))
			return m, nil
		}
		m.board.Remove(msg.id)
		m.clampCursor()
		m.clearNotice()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	if m.focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if !m.canSubmit() {
			return m, nil
		}
		m.creating = true
		return m, m.createCmd(strings.TrimSpace(m.input.Value()))
	case key.Matches(msg, m.keys.Focus):
		m.focusInput = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus):
		m.focusInput = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.board.Len()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCmd()
	case key.Matches(msg, m.keys.Toggle):
		todo, ok := m.board.At(m.cursor)
		if !ok || m.inflight[todo.ID] {
			return m, nil
		}
		m.inflight[todo.ID] = true
		return m, m.updateCmd(todo.ID, !todo.Completed)
	case key.Matches(msg, m.keys.Delete):
		todo, ok := m.board.At(m.cursor)
		if !ok || m.inflight[todo.ID] {
			return m, nil
		}
		m.inflight[todo.ID] = true
		return m, m.deleteCmd(todo.ID)
	}
	return m, nil
}

func (m *Model) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.timeout)
}

func (m *Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		list, err := m.backend.GetTodos(ctx)
		return todosLoadedMsg{todos: list, err: err}
	}
}

func (m *Model) createCmd(title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		todo, err := m.backend.CreateTodo(ctx, title)
		return todoCreatedMsg{todo: todo, err: err}
	}
}

func (m *Model) updateCmd(id int64, completed bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		todo, err := m.backend.UpdateTodoCompletion(ctx, id, completed)
		return todoUpdatedMsg{id: id, todo: todo, err: err}
	}
}

func (m *Model) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.callContext()
		defer cancel()
		return todoDeletedMsg{id: id, err: m.backend.DeleteTodo(ctx, id)}
	}
}

func (m *Model) fail(notice, eventType string, err error, attrs ...logging.Attr) {
	attrs = append(attrs, logging.Error(err))
	logging.WarnWithContext(m.logger, strings.ToLower(notice), eventType, attrs...)
	m.notice = notice
	m.noticeError = true
}

func (m *Model) setNotice(notice string) {
	m.notice = notice
	m.noticeError = false
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeError = false
}

func (m *Model) clampCursor() {
	if m.cursor >= m.board.Len() {
		m.cursor = m.board.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) View() string {
	var b strings.Builder

	completed, total := m.board.Progress()
	b.WriteString(titleStyle.Render("Checklist"))
	b.WriteString("\n\n")

	inputView := m.input.View()
	switch {
	case m.creating:
		inputView += "  " + mutedStyle.Render("adding…")
	case !m.canSubmit():
		inputView += "  " + mutedStyle.Render("[add]")
	default:
		inputView += "  " + successStyle.Render("[add]")
	}
	b.WriteString(panelStyle.Render(inputView))
	b.WriteString("\n\n")

	ratio := 0.0
	if total > 0 {
		ratio = float64(completed) / float64(total)
	}
	b.WriteString(m.progress.ViewAs(ratio))
	b.WriteString(fmt.Sprintf("  %d of %d completed\n\n", completed, total))

	switch {
	case !m.loaded && m.board.Len() == 0:
		b.WriteString(mutedStyle.Render("Loading…"))
		b.WriteString("\n")
	case m.board.Len() == 0:
		b.WriteString(mutedStyle.Render("Nothing to do."))
		b.WriteString("\n")
	default:
		for i, todo := range m.board.Todos() {
			b.WriteString(m.renderRow(i, todo))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.notice != "" {
		if m.noticeError {
			b.WriteString(errorStyle.Render("✖ " + m.notice))
		} else {
			b.WriteString(successStyle.Render("✔ " + m.notice))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderRow(index int, todo api.Todo) string {
	box := mutedStyle.Render(boxUnchecked)
	title := todo.Title
	if todo.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}
	prefix := "  "
	if !m.focusInput && index == m.cursor {
		prefix = selectedStyle.Render(">") + " "
	}
	created := ""
	if ts := todo.CreatedTime(); !ts.IsZero() {
		created = mutedStyle.Render(humanize.RelTime(ts, m.now(), "ago", "from now"))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, prefix, box, " ", title)
	if created != "" {
		row += "  " + created
	}
	if m.inflight[todo.ID] {
		row += " " + mutedStyle.Render("…")
	}
	return row
}
