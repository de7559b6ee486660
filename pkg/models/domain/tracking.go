package domain

import "time"

// CatalogProject is a trackable project managed by a superadmin.
type CatalogProject struct {
	ID       string
	Name     string
	Roles    []string // empty means visible to every role
	Steps    []string
	Deadline string // YYYY-MM-DD, optional
}

// ProjectProgress is one user's progress on a catalog project.
type ProjectProgress struct {
	StepsDone  []bool
	Progress   string
	NextAction string
	Blocker    string
	UpdatedAt  time.Time
}

// TrackingState is the persisted project-tracking state of a user. The Legacy*
// fields belong to the flat pre-catalog format and are folded into Progress by
// tracking.Migrate.
type TrackingState struct {
	Catalog  []CatalogProject
	Progress map[string]ProjectProgress

	LegacyProgress   string
	LegacyNextAction string
	LegacyBlocker    string
	LegacyStepsDone  []bool
}

// ProjectView is a catalog project merged with the user's progress.
type ProjectView struct {
	ID         string
	Name       string
	Deadline   string
	Steps      []ProjectStep
	Progress   string
	NextAction string
	Blocker    string
}

type ProjectStep struct {
	Label string
	Done  bool
}
