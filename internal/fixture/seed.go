// Package fixture is a small in-memory stand-in for the phases/tasks GraphQL
// backend. It answers the load query and the completion mutation that the
// gateway sends, and serves a fixed closing message, so Waypoint can run
// locally and in tests without the real service.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

// maxSeedFileSize guards against accidentally loading a huge file.
const maxSeedFileSize = 1 << 20 // 1 MiB

// Seed is the on-disk description of the checklist served by the fixture.
//
//	phases:
//	  - id: "1"
//	    name: Foundation
//	    order: 1
//	    tasks:
//	      - id: "1"
//	        name: Setup virtual office
//	        completed: true
type Seed struct {
	Phases  []SeedPhase `yaml:"phases" toml:"phases"`
	Message string      `yaml:"message" toml:"message"`
}

// SeedPhase is one phase of a Seed with its tasks inlined.
type SeedPhase struct {
	ID    string     `yaml:"id" toml:"id"`
	Name  string     `yaml:"name" toml:"name"`
	Order int        `yaml:"order" toml:"order"`
	Tasks []SeedTask `yaml:"tasks" toml:"tasks"`
}

// SeedTask is one task of a SeedPhase.
type SeedTask struct {
	ID        string `yaml:"id" toml:"id"`
	Name      string `yaml:"name" toml:"name"`
	Completed bool   `yaml:"completed" toml:"completed"`
}

// DefaultMessage is served by the fact endpoint when the seed sets none.
const DefaultMessage = "Every startup was once a checklist."

// DefaultSeed returns the startup checklist used when no seed file is given.
func DefaultSeed() Seed {
	return Seed{
		Phases: []SeedPhase{
			{ID: "1", Name: "Foundation", Order: 1, Tasks: []SeedTask{
				{ID: "1", Name: "Setup virtual office"},
				{ID: "2", Name: "Set mission & vision"},
				{ID: "3", Name: "Select business name"},
				{ID: "4", Name: "Buy domains"},
			}},
			{ID: "2", Name: "Discovery", Order: 2, Tasks: []SeedTask{
				{ID: "5", Name: "Create roadmap"},
				{ID: "6", Name: "Competitor analysis"},
			}},
			{ID: "3", Name: "Delivery", Order: 3, Tasks: []SeedTask{
				{ID: "7", Name: "Release marketing website"},
				{ID: "8", Name: "Release MVP"},
			}},
		},
	}
}

// LoadSeed reads a seed file. Files ending in .toml are decoded as TOML;
// everything else as YAML. Missing phase orders default to the phase's
// position (1-based) and missing IDs to the position as well.
func LoadSeed(path string) (Seed, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Seed{}, fmt.Errorf("loading seed %q: %w", path, err)
	}
	if info.Size() > maxSeedFileSize {
		return Seed{}, fmt.Errorf("loading seed %q: file exceeds 1 MiB limit", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("loading seed %q: %w", path, err)
	}

	var s Seed
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &s); err != nil {
			return Seed{}, fmt.Errorf("parsing seed %q: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Seed{}, fmt.Errorf("parsing seed %q: %w", path, err)
		}
	}
	s.fillDefaults()

	if err := s.Snapshot().Validate(); err != nil {
		return Seed{}, fmt.Errorf("validating seed %q: %w", path, err)
	}
	return s, nil
}

func (s *Seed) fillDefaults() {
	next := 1
	for i := range s.Phases {
		p := &s.Phases[i]
		if p.Order == 0 {
			p.Order = i + 1
		}
		if p.ID == "" {
			p.ID = strconv.Itoa(i + 1)
		}
		for j := range p.Tasks {
			if p.Tasks[j].ID == "" {
				p.Tasks[j].ID = p.ID + "." + strconv.Itoa(next)
			}
			next++
		}
	}
}

// Snapshot flattens the seed into phases and tasks.
func (s Seed) Snapshot() progress.Snapshot {
	var snap progress.Snapshot
	for _, p := range s.Phases {
		snap.Phases = append(snap.Phases, progress.Phase{PhaseID: p.ID, Name: p.Name, Order: p.Order})
		for _, t := range p.Tasks {
			snap.Tasks = append(snap.Tasks, progress.Task{
				PhaseID:     p.ID,
				TaskID:      t.ID,
				Name:        t.Name,
				IsCompleted: t.Completed,
			})
		}
	}
	return snap
}
