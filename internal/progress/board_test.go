package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_OrdersPhasesAndGatesCheckboxes(t *testing.T) {
	t.Parallel()

	m, _ := loadedModel(t, threePhaseSnapshot(), Options{})
	b := m.Board()

	require.Len(t, b.Phases, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{b.Phases[0].Order, b.Phases[1].Order, b.Phases[2].Order})
	assert.Equal(t, "Foundation", b.Phases[0].Name)

	assert.Equal(t, CompletedMark, b.Phases[0].CompletedMark)
	assert.Empty(t, b.Phases[1].CompletedMark)
	assert.Equal(t, []bool{true, true, false},
		[]bool{b.Phases[0].Enabled, b.Phases[1].Enabled, b.Phases[2].Enabled})

	for _, cb := range b.Phases[1].Tasks {
		assert.False(t, cb.Disabled, "discovery is unlocked by foundation")
	}
	for _, cb := range b.Phases[2].Tasks {
		assert.True(t, cb.Disabled, "launch waits for discovery")
	}
	assert.Nil(t, b.Banner)
}

func TestBoard_LockedPhaseWithoutTasks(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Phases: []Phase{
			{PhaseID: "1", Name: "Setup", Order: 1},
			{PhaseID: "2", Name: "Paperwork", Order: 2},
			{PhaseID: "3", Name: "Build", Order: 3},
		},
		Tasks: []Task{{PhaseID: "1", TaskID: "10", Name: "Pick a name"}},
	}
	m, _ := loadedModel(t, snap, Options{})
	b := m.Board()

	require.Len(t, b.Phases, 3)
	assert.Empty(t, b.Phases[1].Tasks)
	assert.False(t, b.Phases[1].Enabled, "an empty phase is still locked behind an incomplete one")
	assert.True(t, b.Phases[2].Enabled, "an empty predecessor counts as complete")
}

func TestBoard_CheckboxFields(t *testing.T) {
	t.Parallel()

	m, _ := loadedModel(t, startupSnapshot(), Options{})
	b := m.Board()

	require.Len(t, b.Phases[0].Tasks, 1)
	assert.Equal(t, Checkbox{ID: "10", Label: "Pick a name", Checked: false, Disabled: false}, b.Phases[0].Tasks[0])
	assert.Equal(t, Checkbox{ID: "11", Label: "Ship it", Checked: false, Disabled: true}, b.Phases[1].Tasks[0])
}

func TestBoard_BannerWhenAllComplete(t *testing.T) {
	t.Parallel()

	m, _ := loadedModel(t, startupSnapshot(), Options{})
	for _, id := range []string{"10", "11"} {
		effects, err := m.SetTaskCompletion(id, true)
		require.NoError(t, err)
		m.Settle(context.Background(), effects)
	}

	b := m.Board()
	require.NotNil(t, b.Banner)
	assert.Equal(t, "well done", b.Banner.Message)
}

func TestBoard_EmptyChecklistShowsBanner(t *testing.T) {
	t.Parallel()

	m := NewModel(NewMockGateway(Snapshot{}), Options{})
	b := m.Board()
	assert.Empty(t, b.Phases)
	require.NotNil(t, b.Banner)
	assert.Empty(t, b.Banner.Message)
}

func TestBoard_GatingErrorRendersDisabled(t *testing.T) {
	t.Parallel()

	snap := Snapshot{
		Phases: []Phase{{PhaseID: "1", Name: "First", Order: 1}, {PhaseID: "3", Name: "Third", Order: 3}},
		Tasks:  []Task{{PhaseID: "3", TaskID: "t", Name: "stranded"}},
	}
	m, _ := loadedModel(t, snap, Options{})

	b := m.Board()
	require.Len(t, b.Phases, 2)
	require.Len(t, b.Phases[1].Tasks, 1)
	assert.True(t, b.Phases[1].Tasks[0].Disabled)
}

func TestProgress_Counts(t *testing.T) {
	t.Parallel()

	m, _ := loadedModel(t, threePhaseSnapshot(), Options{})
	p := m.Progress()

	require.Len(t, p, 3)
	assert.Equal(t, PhaseProgress{PhaseID: "a", Name: "Foundation", Order: 1, Total: 2, Completed: 2, Enabled: true}, p[0])
	assert.Equal(t, PhaseProgress{PhaseID: "b", Name: "Discovery", Order: 2, Total: 2, Completed: 1, Enabled: true}, p[1])
	assert.Equal(t, PhaseProgress{PhaseID: "c", Name: "Launch", Order: 3, Total: 2, Completed: 0, Enabled: false}, p[2])

	assert.InDelta(t, 1.0, p[0].Percent(), 1e-9)
	assert.InDelta(t, 0.5, p[1].Percent(), 1e-9)
	assert.InDelta(t, 1.0, PhaseProgress{}.Percent(), 1e-9)
}
