// Package normalize turns a heterogeneous ReportSnapshot into the uniform
// layout block tree consumed by the renderer. Normalization never fails:
// missing or malformed optional data becomes empty cells and placeholders.
package normalize

import (
	"time"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/config"
)

const placeholder = "-"

// Normalize returns one top-level Card per report section in the order
// identity, checklist, evaluation, target, projects, schedule. now is used for
// deadline arithmetic on its local calendar date.
func Normalize(snapshot domain.ReportSnapshot, settings config.Settings, now time.Time) []layout.Block {
	return []layout.Block{
		identityCard(snapshot, settings),
		checklistCard(snapshot.Checklist, settings),
		evaluationCard(snapshot.Evaluation, snapshot.Identity, settings),
		targetCard(snapshot.Target, settings),
		projectsCard(snapshot.Projects, settings, now),
		scheduleCard(snapshot.Schedule, settings),
	}
}

func identityCard(snapshot domain.ReportSnapshot, settings config.Settings) layout.Card {
	id := snapshot.Identity
	return layout.Card{
		Title: settings.Label("identity"),
		Body: []layout.Block{
			layout.KeyValueList{Entries: []layout.KeyValue{
				{Key: "Name", Value: orPlaceholder(id.Name)},
				{Key: "Role", Value: orPlaceholder(id.Role)},
				{Key: "Depot", Value: orPlaceholder(id.Depot)},
				{Key: "Date", Value: orPlaceholder(snapshot.Date)},
			}},
		},
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
