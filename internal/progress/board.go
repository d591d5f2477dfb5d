package progress

// CompletedMark is shown next to a phase whose tasks are all completed.
const CompletedMark = "✔"

// Checkbox is the render contract for a single task.
type Checkbox struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Checked  bool   `json:"checked"`
	Disabled bool   `json:"disabled"`
}

// PhaseView is the render contract for a single phase.
type PhaseView struct {
	PhaseID       string     `json:"phase_id"`
	Order         int        `json:"order"`
	Name          string     `json:"name"`
	Enabled       bool       `json:"enabled"`
	CompletedMark string     `json:"completed_mark"`
	Tasks         []Checkbox `json:"tasks"`
}

// Banner is the success banner shown once every task is complete.
type Banner struct {
	Message string `json:"message"`
}

// Board is everything a rendering surface needs to draw the checklist.
type Board struct {
	Phases []PhaseView `json:"phases"`
	// Banner is nil unless every task is complete.
	Banner *Banner `json:"banner,omitempty"`
}

// PhaseProgress holds aggregate task counts for a single phase.
type PhaseProgress struct {
	PhaseID   string
	Name      string
	Order     int
	Total     int
	Completed int
	Enabled   bool
}

// Percent returns the completed fraction in [0, 1]. An empty phase is
// complete.
func (p PhaseProgress) Percent() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// Board builds the render contract from the current state. Phases are sorted
// by order; tasks keep load order. A phase whose gating cannot be evaluated
// renders as disabled.
func (m *Model) Board() Board {
	phases := sortedPhases(m.phases)
	b := Board{Phases: make([]PhaseView, 0, len(phases))}

	for _, p := range phases {
		enabled := m.enabledOrLog(p.PhaseID)
		view := PhaseView{
			PhaseID: p.PhaseID,
			Order:   p.Order,
			Name:    p.Name,
			Enabled: enabled,
		}
		if phaseComplete(m.tasks, p.PhaseID) {
			view.CompletedMark = CompletedMark
		}
		for _, t := range m.tasks {
			if t.PhaseID != p.PhaseID {
				continue
			}
			view.Tasks = append(view.Tasks, Checkbox{
				ID:       t.TaskID,
				Label:    t.Name,
				Checked:  t.IsCompleted,
				Disabled: !enabled,
			})
		}
		b.Phases = append(b.Phases, view)
	}

	if m.IsAllComplete() {
		b.Banner = &Banner{Message: m.successMessage}
	}
	return b
}

// Progress returns per-phase counts in ascending phase order.
func (m *Model) Progress() []PhaseProgress {
	phases := sortedPhases(m.phases)
	out := make([]PhaseProgress, 0, len(phases))
	for _, p := range phases {
		pp := PhaseProgress{
			PhaseID: p.PhaseID,
			Name:    p.Name,
			Order:   p.Order,
			Enabled: m.enabledOrLog(p.PhaseID),
		}
		for _, t := range m.tasks {
			if t.PhaseID != p.PhaseID {
				continue
			}
			pp.Total++
			if t.IsCompleted {
				pp.Completed++
			}
		}
		out = append(out, pp)
	}
	return out
}

func (m *Model) enabledOrLog(phaseID string) bool {
	enabled, err := m.IsPhaseEnabled(phaseID)
	if err != nil {
		m.logger.Warn("gating check failed; rendering phase as disabled", "phase", phaseID, "error", err)
		return false
	}
	return enabled
}
