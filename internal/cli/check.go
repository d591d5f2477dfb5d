package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

type checkFlags struct {
	Force       bool
	Concurrency int
}

// defaultConcurrency bounds the number of completion writes in flight.
const defaultConcurrency = 4

// selectTasks asks the user to choose tasks. Swapped in tests.
var selectTasks = promptForTasks

func newCheckCmd(isCompleted bool) *cobra.Command {
	var flags checkFlags

	use, verb := "check", "Mark tasks as completed"
	if !isCompleted {
		use, verb = "uncheck", "Mark tasks as not completed"
	}

	cmd := &cobra.Command{
		Use:   use + " [TASK_ID...]",
		Short: verb,
		Long: verb + `.

Tasks are applied in the order given, so checking the last task of a phase
unlocks the next phase for the IDs that follow. Tasks in a locked phase are
refused unless --force is set. With no IDs an interactive picker lists the
tasks that can be changed.`,
		Example: fmt.Sprintf(`  waypoint %[1]s 1 2 3
  waypoint %[1]s`, use),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, isCompleted, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Force, "force", false, "Change tasks even when their phase is locked")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", defaultConcurrency, "Maximum concurrent backend writes")
	addProgressFlags(cmd)
	return cmd
}

func init() {
	rootCmd.AddCommand(newCheckCmd(true))
	rootCmd.AddCommand(newCheckCmd(false))
}

func runCheck(cmd *cobra.Command, ids []string, isCompleted bool, flags checkFlags) error {
	if flags.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", flags.Concurrency)
	}

	cfg, err := resolveValidConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	logger := logging.New("check")

	model := buildModel(cfg)
	if _, err := model.Loaded(model.Gateway().LoadAll(ctx)); err != nil {
		return err
	}

	if len(ids) == 0 {
		candidates := changeableTasks(model, isCompleted, flags.Force)
		if len(candidates) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to change.")
			return nil
		}
		ids, err = selectTasks(candidates, isCompleted)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
	}

	var persists, rest []progress.Effect
	for _, id := range ids {
		if !flags.Force {
			if err := model.CheckChangeable(id); err != nil {
				return err
			}
		}
		effects, err := model.SetTaskCompletion(id, isCompleted)
		if err != nil {
			return err
		}
		for _, e := range effects {
			if _, ok := e.(progress.PersistCompletion); ok {
				persists = append(persists, e)
			} else {
				rest = append(rest, e)
			}
		}
	}

	outcomes, err := progress.PerformAll(ctx, model.Gateway(), persists, flags.Concurrency)
	var failed []error
	for _, o := range outcomes {
		model.Apply(o)
		if o.Err != nil {
			e := o.Effect.(progress.PersistCompletion)
			failed = append(failed, fmt.Errorf("task %s: %w", e.TaskID, o.Err))
		}
	}
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("saving %d of %d tasks failed: %w", len(failed), len(persists), errors.Join(failed...))
	}
	logger.Debug("tasks saved", "count", len(persists), "completed", isCompleted)

	// Only the last closing message request matters: each one clears the
	// message before fetching.
	if n := len(rest); n > 0 {
		model.Settle(ctx, rest[n-1:])
	}

	out := cmd.OutOrStdout()
	for _, id := range ids {
		if t, ok := model.Task(id); ok {
			fmt.Fprintf(out, "%s %s\n", checkbox(t.IsCompleted), t.Name)
		}
	}
	if model.IsAllComplete() {
		if msg := model.SuccessMessage(); msg != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, styleMessage.Render("All done! "+msg))
		}
	}
	return nil
}

// changeableTasks lists tasks whose flag differs from the target and whose
// phase is enabled (or every such task when force is set), in board order.
func changeableTasks(model *progress.Model, isCompleted, force bool) []progress.Checkbox {
	var out []progress.Checkbox
	for _, p := range model.Board().Phases {
		for _, t := range p.Tasks {
			if t.Checked == isCompleted || (t.Disabled && !force) {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

// promptForTasks shows a huh multi-select over candidates and returns the
// chosen task IDs in board order.
func promptForTasks(candidates []progress.Checkbox, isCompleted bool) ([]string, error) {
	title := "Which tasks are done?"
	if !isCompleted {
		title = "Which tasks should be reopened?"
	}

	options := make([]huh.Option[string], 0, len(candidates))
	for _, c := range candidates {
		options = append(options, huh.NewOption(c.Label, c.ID))
	}

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(title).
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, fmt.Errorf("selecting tasks: %w", err)
	}

	// huh returns selections in pick order; keep board order so gating
	// applies phase by phase.
	picked := make(map[string]bool, len(selected))
	for _, id := range selected {
		picked[id] = true
	}
	ordered := make([]string, 0, len(selected))
	for _, c := range candidates {
		if picked[c.ID] {
			ordered = append(ordered, c.ID)
		}
	}
	return ordered, nil
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
