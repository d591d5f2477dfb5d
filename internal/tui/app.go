// Package tui renders the checklist as a full-screen Bubble Tea dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

// AppConfig holds display settings for the dashboard.
type AppConfig struct {
	// Title is shown in the title bar.
	Title string
	// Version is the waypoint version shown next to the title.
	Version string
}

// App is the top-level Bubble Tea model. The progress.Model it wraps is only
// touched from Update, so gateway work happens in commands whose results come
// back as LoadedMsg and OutcomeMsg.
type App struct {
	ctx    context.Context
	config AppConfig
	model  *progress.Model
	theme  Theme
	keys   KeyMap
	help   help.Model
	spin   spinner.Model

	width    int
	height   int
	cursor   int
	loading  bool
	pending  int
	status   string
	lastErr  error
	quitting bool
}

// NewApp builds an App around model. Loading starts in Init.
func NewApp(ctx context.Context, cfg AppConfig, model *progress.Model) App {
	if cfg.Title == "" {
		cfg.Title = "My Startup Progress"
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return App{
		ctx:     ctx,
		config:  cfg,
		model:   model,
		theme:   DefaultTheme(),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spin:    s,
		loading: true,
	}
}

// Init starts the spinner, the initial load and any mount-time effects.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spin.Tick, loadCmd(a.ctx, a.model.Gateway(), false)}
	cmds = append(cmds, effectCmds(a.ctx, a.model.Gateway(), a.model.Mount())...)
	return tea.Batch(cmds...)
}

// Update handles input, load results and effect outcomes.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		a.help.Width = m.Width
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(m)
		return a, cmd

	case LoadedMsg:
		return a.handleLoaded(m)

	case OutcomeMsg:
		return a.handleOutcome(m)

	case tea.KeyMsg:
		return a.handleKey(m)
	}
	return a, nil
}

func (a App) handleLoaded(m LoadedMsg) (tea.Model, tea.Cmd) {
	a.loading = false
	if m.Reload {
		// A snapshot fetched before a write lands would undo the local change.
		if a.pending > 0 {
			a.status = "reload discarded: changes still saving"
			return a, nil
		}
		changed, err := a.model.Refresh(m.Snapshot, m.Err)
		a.lastErr = err
		switch {
		case err != nil:
			a.status = ""
		case changed:
			a.status = "reloaded"
		default:
			a.status = "already up to date"
		}
		a.clampCursor()
		return a, nil
	}

	effects, err := a.model.Loaded(m.Snapshot, m.Err)
	a.lastErr = err
	a.clampCursor()
	cmd := a.perform(effects)
	return a, cmd
}

func (a App) handleOutcome(m OutcomeMsg) (tea.Model, tea.Cmd) {
	if a.pending > 0 {
		a.pending--
	}
	a.model.Apply(m.Outcome)
	if m.Outcome.Err != nil {
		if e, ok := m.Outcome.Effect.(progress.PersistCompletion); ok {
			a.lastErr = fmt.Errorf("saving task %s: %w", e.TaskID, m.Outcome.Err)
		}
	}
	return a, nil
}

func (a App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		a.quitting = true
		return a, tea.Quit
	case key.Matches(m, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	case key.Matches(m, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.cursor < len(a.rows())-1 {
			a.cursor++
		}
	case key.Matches(m, a.keys.Reload):
		if a.loading {
			return a, nil
		}
		if a.pending > 0 {
			a.status = "changes still saving; reload when they finish"
			return a, nil
		}
		a.loading = true
		a.status = ""
		return a, tea.Batch(a.spin.Tick, loadCmd(a.ctx, a.model.Gateway(), true))
	case key.Matches(m, a.keys.Toggle):
		return a.toggle()
	}
	return a, nil
}

func (a App) toggle() (tea.Model, tea.Cmd) {
	rows := a.rows()
	if a.cursor < 0 || a.cursor >= len(rows) {
		return a, nil
	}
	row := rows[a.cursor]
	if row.Disabled {
		a.status = "finish the previous phase first"
		return a, nil
	}
	effects, err := a.model.Toggle(row.ID)
	if err != nil {
		a.lastErr = err
		return a, nil
	}
	a.status = ""
	a.lastErr = nil
	cmd := a.perform(effects)
	return a, cmd
}

func (a *App) perform(effects []progress.Effect) tea.Cmd {
	if len(effects) == 0 {
		return nil
	}
	a.pending += len(effects)
	return tea.Batch(effectCmds(a.ctx, a.model.Gateway(), effects)...)
}

// rows flattens the board into the cursor order.
func (a App) rows() []progress.Checkbox {
	var rows []progress.Checkbox
	for _, p := range a.model.Board().Phases {
		rows = append(rows, p.Tasks...)
	}
	return rows
}

func (a *App) clampCursor() {
	n := len(a.rows())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// View renders the title bar, the board, the status line and help.
func (a App) View() string {
	if a.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(a.renderTitle())
	sb.WriteString("\n")

	if a.loading && len(a.model.Tasks()) == 0 {
		sb.WriteString("\n" + a.spin.View() + " Loading checklist…\n")
	} else {
		sb.WriteString(a.renderBoard(a.model.Board()))
	}

	if line := a.renderStatus(); line != "" {
		sb.WriteString("\n" + line + "\n")
	}
	sb.WriteString("\n" + a.help.View(a.keys))
	return sb.String()
}

func (a App) renderTitle() string {
	title := a.config.Title
	if a.config.Version != "" {
		title = fmt.Sprintf("%s  ·  waypoint %s", title, a.config.Version)
	}
	style := a.theme.TitleBar
	if a.width > 0 {
		style = style.Width(a.width)
	}
	return style.Render(title)
}

func (a App) renderBoard(b progress.Board) string {
	var sb strings.Builder
	row := 0
	for _, p := range b.Phases {
		header := a.theme.OrderBadge.Render(fmt.Sprint(p.Order)) + " " + p.Name
		if p.CompletedMark != "" {
			header += " " + a.theme.CompletedMark.Render(p.CompletedMark)
		}
		if !p.Enabled {
			sb.WriteString(a.theme.PhaseLocked.Render(header))
		} else {
			sb.WriteString(a.theme.PhaseHeader.Render(header))
		}
		sb.WriteString("\n")

		for _, t := range p.Tasks {
			sb.WriteString(a.renderTask(t, row == a.cursor))
			sb.WriteString("\n")
			row++
		}
	}

	if b.Banner != nil && b.Banner.Message != "" {
		sb.WriteString(a.theme.Banner.Render("All done! " + b.Banner.Message))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (a App) renderTask(t progress.Checkbox, selected bool) string {
	line := a.theme.Checkbox(t.Checked) + " " + t.Label
	var style lipgloss.Style
	switch {
	case t.Disabled:
		style = a.theme.TaskDisabled
	case t.Checked:
		style = a.theme.TaskChecked
	default:
		style = a.theme.Task
	}
	if selected {
		return a.theme.Cursor.Render("> ") + style.Inherit(a.theme.Cursor).Render(line)
	}
	return "  " + style.Render(line)
}

func (a App) renderStatus() string {
	switch {
	case a.lastErr != nil:
		msg := a.lastErr.Error()
		if errors.Is(a.lastErr, progress.ErrTransport) {
			msg = "backend unavailable: " + msg
		}
		return a.theme.ErrorText.Render(msg)
	case a.loading:
		return a.spin.View() + a.theme.Status.Render(" reloading…")
	case a.pending > 0:
		return a.theme.Status.Render(fmt.Sprintf("saving (%d pending)…", a.pending))
	case a.status != "":
		return a.theme.Status.Render(a.status)
	}
	return ""
}

// RunTUI runs the dashboard until the user quits or ctx is cancelled.
func RunTUI(ctx context.Context, cfg AppConfig, model *progress.Model) error {
	logger := logging.New("tui")
	logger.Info("starting dashboard", "version", cfg.Version)

	p := tea.NewProgram(
		NewApp(ctx, cfg, model),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
