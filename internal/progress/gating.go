package progress

import (
	"fmt"
	"sort"
)

// GatingMode selects how phase enablement is derived from earlier phases.
type GatingMode string

const (
	// GatingPrevious enables a phase when the phase immediately preceding it
	// (order - 1) is complete. Earlier phases are not consulted, so a phase
	// whose own predecessor was completed stays enabled even if a phase further
	// back is later unchecked.
	GatingPrevious GatingMode = "previous"

	// GatingChain enables a phase only when every phase with a lower order is
	// complete.
	GatingChain GatingMode = "chain"
)

// IsValid returns true if the mode is a recognized value.
func (g GatingMode) IsValid() bool {
	return g == GatingPrevious || g == GatingChain
}

// MountCheck selects how Initialize decides whether to fetch the closing
// message at mount time.
type MountCheck string

const (
	// MountCheckBeforeLoad evaluates completion against the state held before
	// the load resolves. A fresh model holds no tasks, so the check is
	// vacuously true and the closing message is always fetched at mount.
	MountCheckBeforeLoad MountCheck = "before-load"

	// MountCheckAfterLoad evaluates completion against the loaded tasks and
	// requires at least one task.
	MountCheckAfterLoad MountCheck = "after-load"

	// MountCheckOff never fetches the closing message at mount.
	MountCheckOff MountCheck = "off"
)

// IsValid returns true if the mount check is a recognized value.
func (m MountCheck) IsValid() bool {
	switch m {
	case MountCheckBeforeLoad, MountCheckAfterLoad, MountCheckOff:
		return true
	}
	return false
}

// phaseByID returns the phase with the given ID, or nil.
func phaseByID(phases []Phase, id string) *Phase {
	for i := range phases {
		if phases[i].PhaseID == id {
			return &phases[i]
		}
	}
	return nil
}

// phaseByOrder returns the phase with the given order, or nil.
func phaseByOrder(phases []Phase, order int) *Phase {
	for i := range phases {
		if phases[i].Order == order {
			return &phases[i]
		}
	}
	return nil
}

// phaseComplete reports whether every task of phaseID is completed. A phase
// without tasks is complete.
func phaseComplete(tasks []Task, phaseID string) bool {
	for _, t := range tasks {
		if t.PhaseID == phaseID && !t.IsCompleted {
			return false
		}
	}
	return true
}

// phaseEnabled applies the gating rule for mode to the phase with the given
// ID. Returns an error wrapping ErrNotFound when the phase is unknown or, in
// GatingPrevious mode, when no phase holds order - 1.
func phaseEnabled(mode GatingMode, phases []Phase, tasks []Task, phaseID string) (bool, error) {
	target := phaseByID(phases, phaseID)
	if target == nil {
		return false, fmt.Errorf("checking phase %s: %w", phaseID, ErrNotFound)
	}
	if target.Order == 1 {
		return true, nil
	}

	if mode == GatingChain {
		for _, p := range phases {
			if p.Order < target.Order && !phaseComplete(tasks, p.PhaseID) {
				return false, nil
			}
		}
		return true, nil
	}

	prev := phaseByOrder(phases, target.Order-1)
	if prev == nil {
		return false, fmt.Errorf("checking phase %s: predecessor with order %d: %w",
			phaseID, target.Order-1, ErrNotFound)
	}
	return phaseComplete(tasks, prev.PhaseID), nil
}

// sortedPhases returns a copy of phases sorted by ascending order.
func sortedPhases(phases []Phase) []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
