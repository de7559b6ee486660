package api

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportRequest is the report snapshot as submitted by clients and snapshot
// files. Owner and Role are taken from the authenticated identity when the
// request comes through the web API.
type ExportRequest struct {
	Owner      string                               `json:"owner,omitempty" yaml:"owner"`
	Role       string                               `json:"role,omitempty" yaml:"role"`
	Name       string                               `json:"name" yaml:"name"`
	Depot      string                               `json:"depot" yaml:"depot"`
	Date       string                               `json:"date" yaml:"date"`
	Checklist  map[string]map[string]ChecklistEntry `json:"checklist" yaml:"checklist"`
	Evaluation Evaluation                           `json:"evaluation" yaml:"evaluation"`
	Target     any                                  `json:"target" yaml:"target"`
	Tracking   Tracking                             `json:"tracking" yaml:"tracking"`
	Schedule   []ScheduleEntry                      `json:"schedule" yaml:"schedule"`
	// Signature is a data URL or bare base64 PNG/JPEG.
	Signature string `json:"signature" yaml:"signature"`
}

type ChecklistEntry struct {
	Value  any            `json:"value" yaml:"value"`
	Note   string         `json:"note" yaml:"note"`
	Fields map[string]any `json:"fields" yaml:"fields"`
}

type Evaluation struct {
	Theme  string                    `json:"theme" yaml:"theme"`
	People []string                  `json:"people" yaml:"people"`
	Scores map[string]map[string]int `json:"scores" yaml:"scores"`
	Note   string                    `json:"note" yaml:"note"`
}

type Tracking struct {
	Catalog  []CatalogProject           `json:"catalog" yaml:"catalog"`
	Progress map[string]ProjectProgress `json:"progress" yaml:"progress"`

	LegacyProgress   string `json:"legacy_progress,omitempty" yaml:"legacy_progress"`
	LegacyNextAction string `json:"legacy_next_action,omitempty" yaml:"legacy_next_action"`
	LegacyBlocker    string `json:"legacy_blocker,omitempty" yaml:"legacy_blocker"`
	LegacyStepsDone  []bool `json:"legacy_steps_done,omitempty" yaml:"legacy_steps_done"`
}

// CatalogProject also accepts the legacy form where a project is given by
// its name only.
type CatalogProject struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Roles    []string `json:"roles" yaml:"roles"`
	Steps    []string `json:"steps" yaml:"steps"`
	Deadline string   `json:"deadline" yaml:"deadline"`
}

type catalogProject CatalogProject

func (p *CatalogProject) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*p = CatalogProject{Name: name}
		return nil
	}
	var v catalogProject
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("catalog project: %w", err)
	}
	*p = CatalogProject(v)
	return nil
}

func (p *CatalogProject) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*p = CatalogProject{Name: node.Value}
		return nil
	}
	var v catalogProject
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("catalog project: %w", err)
	}
	*p = CatalogProject(v)
	return nil
}

type ProjectProgress struct {
	StepsDone  []bool    `json:"steps_done" yaml:"steps_done"`
	Progress   string    `json:"progress" yaml:"progress"`
	NextAction string    `json:"next_action" yaml:"next_action"`
	Blocker    string    `json:"blocker" yaml:"blocker"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

type ScheduleEntry struct {
	ID                string    `json:"id" yaml:"id"`
	Date              string    `json:"date" yaml:"date"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"updated_at"`
	Plan              []string  `json:"plan" yaml:"plan"`
	Realization       []string  `json:"realization" yaml:"realization"`
	PlanLocked        bool      `json:"plan_locked" yaml:"plan_locked"`
	RealizationLocked bool      `json:"realization_locked" yaml:"realization_locked"`
}

type ArchiveEntry struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Date        string    `json:"date"`
	SubmittedAt time.Time `json:"submitted_at"`
	Storage     string    `json:"storage"`
	Ref         string    `json:"ref"`
}

type ArchiveList struct {
	Entries []ArchiveEntry `json:"entries"`
}

type ArchiveLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Error struct {
	Error string `json:"error"`
}
