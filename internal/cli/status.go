package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

type statusFlags struct {
	Phase string // --phase glob over phase names and IDs
	JSON  bool
	Tasks bool // --tasks lists every task under its phase
}

// statusPhaseOutput is the JSON shape of one phase.
type statusPhaseOutput struct {
	PhaseID   string              `json:"phase_id"`
	Order     int                 `json:"order"`
	Name      string              `json:"name"`
	Total     int                 `json:"total"`
	Completed int                 `json:"completed"`
	Percent   float64             `json:"percent"`
	Enabled   bool                `json:"enabled"`
	Complete  bool                `json:"complete"`
	Tasks     []progress.Checkbox `json:"tasks"`
}

// statusOutput is the JSON shape of `waypoint status --json`.
type statusOutput struct {
	Title          string              `json:"title"`
	TotalTasks     int                 `json:"total_tasks"`
	TotalDone      int                 `json:"total_done"`
	AllComplete    bool                `json:"all_complete"`
	ClosingMessage string              `json:"closing_message,omitempty"`
	Phases         []statusPhaseOutput `json:"phases"`
}

func newStatusCmd() *cobra.Command {
	var flags statusFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show phase-by-phase progress",
		Long: `Load the checklist from the backend and print one progress bar per phase,
marking locked phases and completed ones.`,
		Example: `  # Every phase
  waypoint status

  # Phases whose name starts with "Dis"
  waypoint status --phase 'Dis*'

  # Structured output
  waypoint status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Phase, "phase", "", "Only show phases whose name or ID matches this glob")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Output structured JSON to stdout")
	cmd.Flags().BoolVar(&flags.Tasks, "tasks", false, "List tasks under each phase")
	addProgressFlags(cmd)
	return cmd
}

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func runStatus(cmd *cobra.Command, flags statusFlags) error {
	if flags.Phase != "" && !doublestar.ValidatePattern(flags.Phase) {
		return fmt.Errorf("invalid --phase pattern %q", flags.Phase)
	}

	cfg, err := resolveValidConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)

	model := buildModel(cfg)
	effects, err := model.Loaded(model.Gateway().LoadAll(ctx))
	if err != nil {
		return err
	}
	model.Settle(ctx, effects)

	out := buildStatusOutput(cfg.Progress.Title, model, flags.Phase)
	if flags.Phase != "" && len(out.Phases) == 0 {
		return fmt.Errorf("no phase matches %q", flags.Phase)
	}

	if flags.JSON {
		return writePrettyJSON(cmd.OutOrStdout(), out)
	}
	renderStatus(cmd.OutOrStdout(), out, flags.Tasks)
	return nil
}

// buildStatusOutput joins the model's progress counts with its board. Totals
// cover every phase; only phases matching pattern are listed.
func buildStatusOutput(title string, model *progress.Model, pattern string) statusOutput {
	board := model.Board()
	tasksByPhase := make(map[string][]progress.Checkbox, len(board.Phases))
	for _, p := range board.Phases {
		tasksByPhase[p.PhaseID] = p.Tasks
	}

	out := statusOutput{
		Title:       title,
		AllComplete: model.IsAllComplete(),
		Phases:      []statusPhaseOutput{},
	}
	if board.Banner != nil {
		out.ClosingMessage = board.Banner.Message
	}

	for _, pp := range model.Progress() {
		out.TotalTasks += pp.Total
		out.TotalDone += pp.Completed
		if pattern != "" && !phaseMatches(pattern, pp) {
			continue
		}
		tasks := tasksByPhase[pp.PhaseID]
		if tasks == nil {
			tasks = []progress.Checkbox{}
		}
		out.Phases = append(out.Phases, statusPhaseOutput{
			PhaseID:   pp.PhaseID,
			Order:     pp.Order,
			Name:      pp.Name,
			Total:     pp.Total,
			Completed: pp.Completed,
			Percent:   pp.Percent() * 100,
			Enabled:   pp.Enabled,
			Complete:  pp.Completed == pp.Total,
			Tasks:     tasks,
		})
	}
	return out
}

func phaseMatches(pattern string, pp progress.PhaseProgress) bool {
	for _, candidate := range []string{pp.Name, pp.PhaseID} {
		if ok, err := doublestar.Match(pattern, candidate); err == nil && ok {
			return true
		}
	}
	return false
}

var (
	styleTitle    = lipgloss.NewStyle().Bold(true)
	stylePhase    = lipgloss.NewStyle().Bold(true)
	styleLocked   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleComplete = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleMessage  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const progressBarWidth = 40

// renderStatus writes the human-readable report:
//
//	My Startup Progress
//	===================
//	Overall: 5/8 tasks completed (62%)
//
//	1. Foundation ✔
//	████████████████████████████████████████ 100% (4/4)
func renderStatus(w io.Writer, out statusOutput, showTasks bool) {
	fmt.Fprintln(w, styleTitle.Render(out.Title))
	fmt.Fprintln(w, strings.Repeat("=", lipgloss.Width(out.Title)))

	pct := 0.0
	if out.TotalTasks > 0 {
		pct = float64(out.TotalDone) / float64(out.TotalTasks) * 100
	}
	fmt.Fprintf(w, "Overall: %d/%d tasks completed (%.0f%%)\n", out.TotalDone, out.TotalTasks, pct)

	bar := bprogress.New(
		bprogress.WithDefaultGradient(),
		bprogress.WithWidth(progressBarWidth),
		bprogress.WithoutPercentage(),
	)

	for _, p := range out.Phases {
		fmt.Fprintln(w)
		header := fmt.Sprintf("%d. %s", p.Order, p.Name)
		switch {
		case p.Complete:
			header = stylePhase.Render(header) + " " + styleComplete.Render(progress.CompletedMark)
		case !p.Enabled:
			header = styleLocked.Render(header + " (locked)")
		default:
			header = stylePhase.Render(header)
		}
		fmt.Fprintln(w, header)
		fmt.Fprintf(w, "%s %.0f%% (%d/%d)\n", bar.ViewAs(p.Percent/100), p.Percent, p.Completed, p.Total)

		if showTasks {
			for _, t := range p.Tasks {
				box := "[ ]"
				if t.Checked {
					box = "[x]"
				}
				fmt.Fprintf(w, "  %s %s  (id %s)\n", box, t.Label, t.ID)
			}
		}
	}

	if out.AllComplete && out.ClosingMessage != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleMessage.Render("All done! "+out.ClosingMessage))
	}
}

// writePrettyJSON marshals v and writes it indented.
func writePrettyJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = w.Write(pretty.Pretty(data))
	return err
}
