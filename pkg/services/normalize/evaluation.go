package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/config"
)

// NeutralScore replaces unset or out-of-range item scores.
const NeutralScore = 3

var evaluationColumns = []string{"No", "Item", "Score"}

func evaluationCard(ev domain.Evaluation, identity domain.Identity, settings config.Settings) layout.Card {
	theme := ev.Theme
	if theme == "" {
		theme = domain.ThemeNone
	}
	card := layout.Card{Title: settings.Label("evaluation"), Badge: string(theme)}

	items := settings.Items(theme)
	if theme == domain.ThemeNone || len(items) == 0 {
		card.Body = []layout.Block{layout.Text{Content: "No evaluation theme is active"}}
		return card
	}

	for _, subject := range subjects(ev, theme, identity) {
		scores, ok := ev.Scores[subject]
		if !ok {
			scores = ev.Scores[""]
		}
		card.Body = append(card.Body, scoreTable(subject, items, scores))
	}
	if note := strings.TrimSpace(ev.Note); note != "" {
		card.Body = append(card.Body, layout.Text{Content: note})
	}
	return card
}

// subjects lists the people scored under theme. Per-person themes with no
// tracked people score the report owner.
func subjects(ev domain.Evaluation, theme domain.Theme, identity domain.Identity) []string {
	if !theme.PerPerson() {
		return []string{""}
	}
	seen := make(map[string]bool, len(ev.People))
	var out []string
	for _, p := range ev.People {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		out = []string{identity.Name}
	}
	return out
}

func scoreTable(subject string, items []string, scores map[string]int) layout.Table {
	rows := make([][]string, 0, len(items))
	sum := 0
	for i, item := range items {
		s, ok := scores[item]
		if !ok || s < 1 || s > 5 {
			s = NeutralScore
		}
		sum += s
		rows = append(rows, []string{strconv.Itoa(i + 1), item, strconv.Itoa(s)})
	}
	avg := float64(sum) / float64(len(items))

	caption := fmt.Sprintf("Average %.1f", avg)
	if subject != "" {
		caption = fmt.Sprintf("%s · average %.1f", subject, avg)
	}
	return layout.Table{Caption: caption, Columns: evaluationColumns, Rows: rows}
}
