// Package tracking prepares project-tracking state for reporting: it upgrades
// legacy state once and builds the role-filtered project view.
package tracking

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/de-tools/daily-report/pkg/models/domain"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Migrate upgrades state in place and reports whether anything changed.
// Catalog entries that only carry a name get a slug ID, and the legacy flat
// progress fields are folded into the progress of the first catalog project.
// Applying Migrate to already migrated state is a no-op.
func Migrate(state *domain.TrackingState) bool {
	if state == nil {
		return false
	}
	changed := false

	for i := range state.Catalog {
		p := &state.Catalog[i]
		if p.ID == "" && strings.TrimSpace(p.Name) != "" {
			p.ID = uniqueID(state.Catalog, slug(p.Name))
			changed = true
		}
	}

	if !hasLegacy(state) {
		return changed
	}

	target := firstProjectID(state.Catalog)
	if target == "" {
		// Nothing to attach legacy progress to yet; keep it for a later run.
		return changed
	}
	if state.Progress == nil {
		state.Progress = map[string]domain.ProjectProgress{}
	}

	existing, ok := state.Progress[target]
	if !ok || isBlank(existing) {
		state.Progress[target] = domain.ProjectProgress{
			StepsDone:  slices.Clone(state.LegacyStepsDone),
			Progress:   state.LegacyProgress,
			NextAction: state.LegacyNextAction,
			Blocker:    state.LegacyBlocker,
			UpdatedAt:  existing.UpdatedAt,
		}
	}

	state.LegacyProgress = ""
	state.LegacyNextAction = ""
	state.LegacyBlocker = ""
	state.LegacyStepsDone = nil
	return true
}

func hasLegacy(state *domain.TrackingState) bool {
	return strings.TrimSpace(state.LegacyProgress) != "" ||
		strings.TrimSpace(state.LegacyNextAction) != "" ||
		strings.TrimSpace(state.LegacyBlocker) != "" ||
		len(state.LegacyStepsDone) > 0
}

func isBlank(p domain.ProjectProgress) bool {
	return p.Progress == "" && p.NextAction == "" && p.Blocker == "" && !slices.Contains(p.StepsDone, true)
}

func firstProjectID(catalog []domain.CatalogProject) string {
	for _, p := range catalog {
		if p.ID != "" {
			return p.ID
		}
	}
	return ""
}

func slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "project"
	}
	return s
}

func uniqueID(catalog []domain.CatalogProject, base string) string {
	id := base
	for n := 2; ; n++ {
		taken := slices.ContainsFunc(catalog, func(p domain.CatalogProject) bool { return p.ID == id })
		if !taken {
			return id
		}
		id = base + "-" + strconv.Itoa(n)
	}
}
