package domain

import "time"

// ReportSnapshot is the full input for one report generation. It is assembled
// fresh for every export and never persisted in this form.
type ReportSnapshot struct {
	Identity   Identity
	Date       string // YYYY-MM-DD
	Checklist  map[string]map[string]ChecklistEntry
	Evaluation Evaluation
	// Target is loosely typed: a list of KPI rows, a generic table or a flat map.
	Target    any
	Projects  []ProjectView
	Schedule  []ScheduleEntry
	Signature []byte // encoded PNG or JPEG, optional
}

// Identity of the person filing the report.
type Identity struct {
	Owner string // stable user key, namespaces the archive
	Name  string
	Role  string
	Depot string
}

// ChecklistEntry is the stored value of a single checklist row.
type ChecklistEntry struct {
	Value  any
	Note   string
	Fields map[string]any // supplementary fields of composite rows
}

type Theme string

const (
	ThemeAttitude    Theme = "attitude"
	ThemeCompetency  Theme = "competency"
	ThemeAchievement Theme = "achievement"
	ThemeCompliance  Theme = "compliance"
	ThemeNone        Theme = "none"
)

// PerPerson reports whether the theme is scored once per tracked person.
func (t Theme) PerPerson() bool {
	return t == ThemeAttitude || t == ThemeCompetency
}

// Evaluation holds scores for the active theme. Scores are keyed by person and
// then by item label; non per-person themes use the empty person key.
type Evaluation struct {
	Theme  Theme
	People []string
	Scores map[string]map[string]int
	Note   string
}

// ScheduleEntry is one plan/realization record. Each side locks independently
// once submitted.
type ScheduleEntry struct {
	ID                string
	Date              string // YYYY-MM-DD
	UpdatedAt         time.Time
	Plan              []string
	Realization       []string
	PlanLocked        bool
	RealizationLocked bool
}
