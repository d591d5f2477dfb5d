package progress

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Sentinel errors returned by the progress model and its gateways.
var (
	// ErrNotFound indicates a referenced phase or task is absent from the
	// loaded state.
	ErrNotFound = errors.New("not found")

	// ErrTransport indicates a network, HTTP or decode failure talking to the
	// backend or the closing message service.
	ErrTransport = errors.New("transport error")

	// ErrInvalidSnapshot indicates a loaded snapshot violates the data model
	// invariants (duplicate IDs, duplicate orders, dangling phase references).
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrPhaseLocked indicates an attempt to change a task in a phase that is
	// not enabled yet.
	ErrPhaseLocked = errors.New("phase locked")
)

// Phase is an ordered stage of the checklist containing zero or more tasks.
type Phase struct {
	PhaseID string `json:"phaseId"`
	Name    string `json:"name"`
	Order   int    `json:"order"`
}

// Task is a single completable checklist item belonging to exactly one phase.
type Task struct {
	PhaseID     string `json:"phaseId"`
	TaskID      string `json:"taskId"`
	Name        string `json:"name"`
	IsCompleted bool   `json:"isCompleted"`
}

// Ack is the backend's acknowledgement of a completion update.
type Ack struct {
	PhaseID     string `json:"phaseId"`
	IsCompleted bool   `json:"isCompleted"`
}

// Snapshot is the full set of phases and tasks returned by one load.
type Snapshot struct {
	Phases []Phase `json:"phases"`
	Tasks  []Task  `json:"tasks"`
}

// Validate checks the snapshot against the data model invariants:
//
//   - Every phase has a non-empty ID and a positive order.
//   - No two phases share an ID or an order.
//   - Every task has a non-empty, unique ID.
//   - Every task references an existing phase.
//
// Returns an error wrapping ErrInvalidSnapshot describing the first violation.
func (s Snapshot) Validate() error {
	phaseIDs := make(map[string]bool, len(s.Phases))
	orders := make(map[int]string, len(s.Phases))
	for _, p := range s.Phases {
		if p.PhaseID == "" {
			return fmt.Errorf("%w: phase %q has empty ID", ErrInvalidSnapshot, p.Name)
		}
		if p.Order <= 0 {
			return fmt.Errorf("%w: phase %s has non-positive order %d", ErrInvalidSnapshot, p.PhaseID, p.Order)
		}
		if phaseIDs[p.PhaseID] {
			return fmt.Errorf("%w: duplicate phase ID %s", ErrInvalidSnapshot, p.PhaseID)
		}
		if other, dup := orders[p.Order]; dup {
			return fmt.Errorf("%w: phases %s and %s share order %d", ErrInvalidSnapshot, other, p.PhaseID, p.Order)
		}
		phaseIDs[p.PhaseID] = true
		orders[p.Order] = p.PhaseID
	}

	taskIDs := make(map[string]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.TaskID == "" {
			return fmt.Errorf("%w: task %q has empty ID", ErrInvalidSnapshot, t.Name)
		}
		if taskIDs[t.TaskID] {
			return fmt.Errorf("%w: duplicate task ID %s", ErrInvalidSnapshot, t.TaskID)
		}
		if !phaseIDs[t.PhaseID] {
			return fmt.Errorf("%w: task %s references unknown phase %s", ErrInvalidSnapshot, t.TaskID, t.PhaseID)
		}
		taskIDs[t.TaskID] = true
	}
	return nil
}

// Fingerprint returns a digest of the snapshot that is independent of the
// order in which the backend listed phases and tasks. Two snapshots with the
// same fingerprint render identically.
func (s Snapshot) Fingerprint() uint64 {
	phases := make([]Phase, len(s.Phases))
	copy(phases, s.Phases)
	sort.Slice(phases, func(i, j int) bool { return phases[i].PhaseID < phases[j].PhaseID })

	tasks := make([]Task, len(s.Tasks))
	copy(tasks, s.Tasks)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].TaskID < tasks[j].TaskID })

	d := xxhash.New()
	for _, p := range phases {
		_, _ = d.WriteString("p\x00" + p.PhaseID + "\x00" + p.Name + "\x00" + strconv.Itoa(p.Order) + "\x00")
	}
	for _, t := range tasks {
		_, _ = d.WriteString("t\x00" + t.TaskID + "\x00" + t.PhaseID + "\x00" + t.Name + "\x00" + strconv.FormatBool(t.IsCompleted) + "\x00")
	}
	return d.Sum64()
}

// clone returns a deep copy of the snapshot.
func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Phases: make([]Phase, len(s.Phases)),
		Tasks:  make([]Task, len(s.Tasks)),
	}
	copy(out.Phases, s.Phases)
	copy(out.Tasks, s.Tasks)
	return out
}
