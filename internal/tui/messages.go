package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

// LoadedMsg carries the result of a Gateway.LoadAll call. Reload is set for
// loads triggered by the reload key rather than at startup.
type LoadedMsg struct {
	Snapshot progress.Snapshot
	Err      error
	Reload   bool
}

// OutcomeMsg carries the outcome of a performed effect back to the update
// loop.
type OutcomeMsg struct {
	Outcome progress.Outcome
}

// loadCmd runs LoadAll off the update goroutine.
func loadCmd(ctx context.Context, gw progress.Gateway, reload bool) tea.Cmd {
	return func() tea.Msg {
		snap, err := gw.LoadAll(ctx)
		return LoadedMsg{Snapshot: snap, Err: err, Reload: reload}
	}
}

// effectCmds turns effects into commands. The commands only touch the
// gateway; outcomes are applied to the model in Update.
func effectCmds(ctx context.Context, gw progress.Gateway, effects []progress.Effect) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, e := range effects {
		e := e
		cmds = append(cmds, func() tea.Msg {
			return OutcomeMsg{Outcome: progress.Perform(ctx, gw, e)}
		})
	}
	return cmds
}
