package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/config"
)

type DeadlineStatus string

const (
	DeadlineOver DeadlineStatus = "over"
	DeadlineWarn DeadlineStatus = "warn"
	DeadlineOK   DeadlineStatus = "ok"
	DeadlineNone DeadlineStatus = "none"
)

// warnWindowDays is the largest number of remaining days still flagged warn.
const warnWindowDays = 3

const dateLayout = "2006-01-02"

// Percent returns round(done / max(total, 1) * 100).
func Percent(steps []domain.ProjectStep) int {
	done := 0
	for _, s := range steps {
		if s.Done {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(max(len(steps), 1))))
}

// DaysRemaining returns the whole calendar days from the local date of now to
// deadline. ok is false when deadline is blank or unparsable.
func DaysRemaining(deadline string, now time.Time) (days int, ok bool) {
	deadline = strings.TrimSpace(deadline)
	if len(deadline) > len(dateLayout) {
		deadline = deadline[:len(dateLayout)]
	}
	due, err := time.Parse(dateLayout, deadline)
	if err != nil {
		return 0, false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(math.Round(due.Sub(today).Hours() / 24)), true
}

// StatusForDays classifies remaining days: negative is over, 0..3 warn.
func StatusForDays(days int) DeadlineStatus {
	switch {
	case days < 0:
		return DeadlineOver
	case days <= warnWindowDays:
		return DeadlineWarn
	default:
		return DeadlineOK
	}
}

func DeadlineStatusOf(deadline string, now time.Time) DeadlineStatus {
	days, ok := DaysRemaining(deadline, now)
	if !ok {
		return DeadlineNone
	}
	return StatusForDays(days)
}

func projectsCard(projects []domain.ProjectView, settings config.Settings, now time.Time) layout.Card {
	card := layout.Card{Title: settings.Label("projects")}
	if len(projects) == 0 {
		card.Body = []layout.Block{layout.Text{Content: "No projects assigned"}}
		return card
	}
	card.Badge = fmt.Sprintf("%d", len(projects))
	for _, p := range projects {
		card.Body = append(card.Body, projectCard(p, now))
	}
	return card
}

func projectCard(p domain.ProjectView, now time.Time) layout.Card {
	done := 0
	var steps []string
	for _, s := range p.Steps {
		mark := "[ ]"
		if s.Done {
			done++
			mark = "[x]"
		}
		steps = append(steps, mark+" "+s.Label)
	}

	status := DeadlineStatusOf(p.Deadline, now)
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Untitled project"
	}

	card := layout.Card{
		Title: name,
		Badge: string(status),
		Body: []layout.Block{
			layout.KeyValueList{Entries: []layout.KeyValue{
				{Key: "Completion", Value: fmt.Sprintf("%d%% (%d/%d)", Percent(p.Steps), done, len(p.Steps))},
				{Key: "Deadline", Value: deadlineText(p.Deadline, now)},
				{Key: "Progress", Value: orPlaceholder(strings.TrimSpace(p.Progress))},
				{Key: "Next action", Value: orPlaceholder(strings.TrimSpace(p.NextAction))},
				{Key: "Blocker", Value: orPlaceholder(strings.TrimSpace(p.Blocker))},
			}},
		},
	}
	if len(steps) > 0 {
		card.Body = append(card.Body, layout.Text{Content: strings.Join(steps, "\n")})
	}
	return card
}

func deadlineText(deadline string, now time.Time) string {
	days, ok := DaysRemaining(deadline, now)
	if !ok {
		return placeholder
	}
	date := strings.TrimSpace(deadline)[:len(dateLayout)]
	switch {
	case days < 0:
		return fmt.Sprintf("%s (%d days overdue)", date, -days)
	case days == 0:
		return date + " (due today)"
	default:
		return fmt.Sprintf("%s (%d days left)", date, days)
	}
}
