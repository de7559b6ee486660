package tracking

import (
	"slices"
	"strings"

	"github.com/de-tools/daily-report/pkg/models/domain"
)

// View returns the catalog projects visible to role merged with the user's
// progress. Step flags are aligned to the catalog steps; missing flags count as
// not done and surplus flags are dropped.
func View(state domain.TrackingState, role string) []domain.ProjectView {
	views := make([]domain.ProjectView, 0, len(state.Catalog))
	for _, p := range state.Catalog {
		if !visible(p, role) {
			continue
		}
		progress := state.Progress[p.ID]

		steps := make([]domain.ProjectStep, len(p.Steps))
		for i, label := range p.Steps {
			steps[i] = domain.ProjectStep{
				Label: label,
				Done:  i < len(progress.StepsDone) && progress.StepsDone[i],
			}
		}

		views = append(views, domain.ProjectView{
			ID:         p.ID,
			Name:       p.Name,
			Deadline:   p.Deadline,
			Steps:      steps,
			Progress:   progress.Progress,
			NextAction: progress.NextAction,
			Blocker:    progress.Blocker,
		})
	}
	return views
}

func visible(p domain.CatalogProject, role string) bool {
	if len(p.Roles) == 0 {
		return true
	}
	return slices.ContainsFunc(p.Roles, func(r string) bool {
		return strings.EqualFold(r, role)
	})
}
