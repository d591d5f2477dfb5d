// Package progress holds the checklist state and the phase gating rules.
//
// A Model owns the current phases and tasks and computes two derived views:
// whether a phase is enabled (its predecessor is complete) and whether the
// whole checklist is complete. Model operations never perform I/O themselves;
// they return Effects which the owner runs with Perform and feeds back with
// Apply. This keeps the model deterministic and lets a Bubble Tea program run
// gateway calls as commands while a CLI command runs them inline.
//
// A Model is not safe for concurrent use. It is meant to be owned by a single
// goroutine, such as a Bubble Tea update loop.
package progress

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
)

// Options tunes the model's behavior. The zero value selects GatingPrevious,
// MountCheckBeforeLoad and no cascading.
type Options struct {
	// Gating selects the phase enablement rule.
	Gating GatingMode
	// MountCheck selects how Initialize decides to fetch the closing message.
	MountCheck MountCheck
	// CascadeUncheck unchecks every completed task in later phases when a
	// task is unchecked.
	CascadeUncheck bool
	// Logger overrides the default "progress" logger.
	Logger *log.Logger
}

// Model is the checklist state: phases, tasks and the closing message.
type Model struct {
	gw     Gateway
	opts   Options
	logger *log.Logger

	phases         []Phase
	tasks          []Task
	successMessage string
}

// NewModel returns an empty Model backed by gw.
func NewModel(gw Gateway, opts Options) *Model {
	if opts.Gating == "" {
		opts.Gating = GatingPrevious
	}
	if opts.MountCheck == "" {
		opts.MountCheck = MountCheckBeforeLoad
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("progress")
	}
	return &Model{
		gw:     gw,
		opts:   opts,
		logger: logger,
	}
}

// Gateway returns the gateway the model was created with.
func (m *Model) Gateway() Gateway {
	return m.gw
}

// Initialize loads every phase and task and replaces the model state
// wholesale. On failure the error is logged, prior state is left untouched and
// the error is returned; the returned effects are still valid and should be
// performed. It is Mount, LoadAll and Loaded run back to back.
func (m *Model) Initialize(ctx context.Context) ([]Effect, error) {
	effects := m.Mount()
	snap, err := m.gw.LoadAll(ctx)
	more, err := m.Loaded(snap, err)
	return append(effects, more...), err
}

// Mount runs the mount-time closing message check for MountCheckBeforeLoad.
// The check sees the state held before any load, which for a fresh model is
// empty and therefore vacuously complete.
func (m *Model) Mount() []Effect {
	if m.opts.MountCheck == MountCheckBeforeLoad && m.IsAllComplete() {
		return []Effect{m.requestClosingMessage()}
	}
	return nil
}

// Loaded takes the result of a Gateway.LoadAll call. A load error or an
// invalid snapshot is logged and returned with the state left untouched.
// Otherwise the state is replaced and, under MountCheckAfterLoad, a closing
// message is requested when the loaded tasks are all complete.
func (m *Model) Loaded(snap Snapshot, err error) ([]Effect, error) {
	if err := m.accept(snap, err); err != nil {
		return nil, err
	}
	m.replace(snap)
	if m.opts.MountCheck == MountCheckAfterLoad && len(m.tasks) > 0 && m.IsAllComplete() {
		return []Effect{m.requestClosingMessage()}, nil
	}
	return nil, nil
}

// Reload fetches a fresh snapshot and replaces the state only when it differs
// from the local one. It reports whether the state changed.
func (m *Model) Reload(ctx context.Context) (bool, error) {
	snap, err := m.gw.LoadAll(ctx)
	return m.Refresh(snap, err)
}

// Refresh is the second half of Reload for callers that run LoadAll
// themselves.
func (m *Model) Refresh(snap Snapshot, err error) (bool, error) {
	if err := m.accept(snap, err); err != nil {
		return false, err
	}
	if snap.Fingerprint() == m.Snapshot().Fingerprint() {
		m.logger.Debug("snapshot unchanged", "phases", len(snap.Phases), "tasks", len(snap.Tasks))
		return false, nil
	}
	m.replace(snap)
	return true, nil
}

func (m *Model) accept(snap Snapshot, err error) error {
	if err != nil {
		m.logger.Warn("loading phases and tasks failed", "error", err)
		return fmt.Errorf("loading phases and tasks: %w", err)
	}
	if err := snap.Validate(); err != nil {
		m.logger.Warn("rejecting snapshot", "error", err)
		return fmt.Errorf("loading phases and tasks: %w", err)
	}
	return nil
}

func (m *Model) replace(snap Snapshot) {
	snap = snap.clone()
	m.phases = snap.Phases
	m.tasks = snap.Tasks
	m.logger.Debug("loaded snapshot", "phases", len(m.phases), "tasks", len(m.tasks))
}

// Load replaces the model state with snap without consulting the gateway.
// The snapshot must satisfy Snapshot.Validate.
func (m *Model) Load(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	m.replace(snap)
	return nil
}

// IsPhaseEnabled reports whether tasks of the phase may be changed. The phase
// with order 1 is always enabled. Returns an error wrapping ErrNotFound when
// phaseID is unknown or its predecessor order is missing.
func (m *Model) IsPhaseEnabled(phaseID string) (bool, error) {
	return phaseEnabled(m.opts.Gating, m.phases, m.tasks, phaseID)
}

// IsPhaseCompleted reports whether every task of the phase is completed.
func (m *Model) IsPhaseCompleted(phaseID string) (bool, error) {
	if phaseByID(m.phases, phaseID) == nil {
		return false, fmt.Errorf("checking phase %s: %w", phaseID, ErrNotFound)
	}
	return phaseComplete(m.tasks, phaseID), nil
}

// IsAllComplete reports whether every task is completed. It is vacuously true
// when no tasks are loaded.
func (m *Model) IsAllComplete() bool {
	return allComplete(m.tasks)
}

// SetTaskCompletion sets a task's completion flag. The task is replaced by a
// copy carrying the new flag; the backend is told through a
// PersistCompletion effect. If every task is complete afterwards a
// FetchClosingMessage effect follows.
//
// An unknown taskID returns an error wrapping ErrNotFound and leaves the state
// untouched with no effects.
func (m *Model) SetTaskCompletion(taskID string, isCompleted bool) ([]Effect, error) {
	idx := taskIndex(m.tasks, taskID)
	if idx < 0 {
		return nil, fmt.Errorf("setting task %s: %w", taskID, ErrNotFound)
	}

	next := make([]Task, len(m.tasks))
	copy(next, m.tasks)
	next[idx].IsCompleted = isCompleted
	effects := []Effect{PersistCompletion{TaskID: taskID, IsCompleted: isCompleted}}

	if !isCompleted && m.opts.CascadeUncheck {
		effects = append(effects, m.cascade(next, next[idx].PhaseID)...)
	}

	m.tasks = next
	m.logger.Debug("task updated", "task", taskID, "completed", isCompleted)

	if allComplete(next) {
		effects = append(effects, m.requestClosingMessage())
	}
	return effects, nil
}

// Toggle flips a task's completion flag. See SetTaskCompletion.
func (m *Model) Toggle(taskID string) ([]Effect, error) {
	idx := taskIndex(m.tasks, taskID)
	if idx < 0 {
		return nil, fmt.Errorf("toggling task %s: %w", taskID, ErrNotFound)
	}
	return m.SetTaskCompletion(taskID, !m.tasks[idx].IsCompleted)
}

// CheckChangeable returns an error wrapping ErrPhaseLocked when the task's
// phase is not enabled, or ErrNotFound when the task or its phase is unknown.
func (m *Model) CheckChangeable(taskID string) error {
	idx := taskIndex(m.tasks, taskID)
	if idx < 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	enabled, err := m.IsPhaseEnabled(m.tasks[idx].PhaseID)
	if err != nil {
		return fmt.Errorf("task %s: %w", taskID, err)
	}
	if !enabled {
		return fmt.Errorf("task %s in phase %s: %w", taskID, m.tasks[idx].PhaseID, ErrPhaseLocked)
	}
	return nil
}

// cascade unchecks, in place, every completed task whose phase orders after
// phaseID and returns a PersistCompletion for each.
func (m *Model) cascade(tasks []Task, phaseID string) []Effect {
	from := phaseByID(m.phases, phaseID)
	if from == nil {
		return nil
	}
	later := make(map[string]bool)
	for _, p := range m.phases {
		if p.Order > from.Order {
			later[p.PhaseID] = true
		}
	}

	var effects []Effect
	for i := range tasks {
		if later[tasks[i].PhaseID] && tasks[i].IsCompleted {
			tasks[i].IsCompleted = false
			effects = append(effects, PersistCompletion{TaskID: tasks[i].TaskID, IsCompleted: false})
		}
	}
	if len(effects) > 0 {
		m.logger.Debug("cascaded uncheck", "phase", phaseID, "tasks", len(effects))
	}
	return effects
}

// requestClosingMessage clears the current message and returns the effect
// that fetches a new one.
func (m *Model) requestClosingMessage() Effect {
	m.successMessage = ""
	return FetchClosingMessage{}
}

// Apply records the outcome of a performed effect. Persist outcomes are only
// logged. A closing message outcome stores the message on success.
func (m *Model) Apply(o Outcome) {
	switch e := o.Effect.(type) {
	case PersistCompletion:
		if o.Err != nil {
			m.logger.Warn("persisting task completion failed",
				"task", e.TaskID, "completed", e.IsCompleted, "error", o.Err)
			return
		}
		m.logger.Debug("task completion persisted",
			"task", e.TaskID, "phase", o.Ack.PhaseID, "completed", o.Ack.IsCompleted)
	case FetchClosingMessage:
		if o.Err != nil {
			m.logger.Warn("fetching closing message failed", "error", o.Err)
			return
		}
		m.successMessage = o.Message
	default:
		m.logger.Warn("ignoring outcome of unknown effect", "effect", fmt.Sprintf("%T", o.Effect))
	}
}

// Settle performs effects one after another against the model's gateway and
// applies each outcome.
func (m *Model) Settle(ctx context.Context, effects []Effect) {
	for _, e := range effects {
		m.Apply(Perform(ctx, m.gw, e))
	}
}

// SuccessMessage returns the last fetched closing message.
func (m *Model) SuccessMessage() string {
	return m.successMessage
}

// Snapshot returns a copy of the current phases and tasks.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{Phases: m.phases, Tasks: m.tasks}.clone()
}

// Phases returns a copy of the phases in ascending order.
func (m *Model) Phases() []Phase {
	return sortedPhases(m.phases)
}

// Tasks returns a copy of every task.
func (m *Model) Tasks() []Task {
	out := make([]Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// Task returns the task with the given ID.
func (m *Model) Task(taskID string) (Task, bool) {
	idx := taskIndex(m.tasks, taskID)
	if idx < 0 {
		return Task{}, false
	}
	return m.tasks[idx], true
}

// TasksInPhase returns the tasks of phaseID in load order.
func (m *Model) TasksInPhase(phaseID string) []Task {
	var out []Task
	for _, t := range m.tasks {
		if t.PhaseID == phaseID {
			out = append(out, t)
		}
	}
	return out
}

func taskIndex(tasks []Task, taskID string) int {
	for i := range tasks {
		if tasks[i].TaskID == taskID {
			return i
		}
	}
	return -1
}

func allComplete(tasks []Task) bool {
	for _, t := range tasks {
		if !t.IsCompleted {
			return false
		}
	}
	return true
}
