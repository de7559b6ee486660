package normalize

import (
	"sort"
	"strings"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/config"
)

// scheduleCard groups entries by date, newest date first; within a date the
// most recently updated entry comes first.
func scheduleCard(entries []domain.ScheduleEntry, settings config.Settings) layout.Card {
	card := layout.Card{Title: settings.Label("schedule")}
	if len(entries) == 0 {
		card.Body = []layout.Block{layout.Text{Content: "No schedule entries"}}
		return card
	}

	sorted := append([]domain.ScheduleEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	var group *layout.Card
	for _, e := range sorted {
		if group == nil || group.Title != orPlaceholder(e.Date) {
			if group != nil {
				card.Body = append(card.Body, *group)
			}
			group = &layout.Card{Title: orPlaceholder(e.Date)}
		}
		group.Body = append(group.Body, entryBlocks(e)...)
	}
	card.Body = append(card.Body, *group)
	return card
}

func entryBlocks(e domain.ScheduleEntry) []layout.Block {
	return []layout.Block{
		layout.KeyValueList{Entries: []layout.KeyValue{
			{Key: "Plan", Value: lockLabel(e.PlanLocked)},
			{Key: "Realization", Value: lockLabel(e.RealizationLocked)},
		}},
		layout.Text{Content: "Plan\n" + bullets(e.Plan)},
		layout.Text{Content: "Realization\n" + bullets(e.Realization)},
	}
}

func bullets(lines []string) string {
	var out []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, "• "+l)
		}
	}
	if len(out) == 0 {
		return placeholder
	}
	return strings.Join(out, "\n")
}

func lockLabel(locked bool) string {
	if locked {
		return "Locked"
	}
	return "Open"
}
