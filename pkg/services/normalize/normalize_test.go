package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/config"
)

func sampleSnapshot() domain.ReportSnapshot {
	return domain.ReportSnapshot{
		Identity: domain.Identity{Owner: "u-1", Name: "Budi", Role: "sales", Depot: "Jakarta"},
		Date:     "2026-10-18",
		Checklist: map[string]map[string]domain.ChecklistEntry{
			"opening": {
				"store_condition": {Value: "Good", Note: " clean "},
				"stock_count":     {Value: 42.0},
				"display":         {Value: 7.0},
			},
			"visit": {
				"promo": {
					Value:  "Yes",
					Fields: map[string]any{"detail": "Display", "budget": 150000.0, "qty": 12.0},
				},
			},
			"unknown": {"row": {Value: "ignored"}},
		},
		Evaluation: domain.Evaluation{Theme: domain.ThemeAttitude},
		Schedule: []domain.ScheduleEntry{
			{ID: "s1", Date: "2026-10-18", Plan: []string{"Visit 5 outlets"}},
		},
	}
}

func findTable(t *testing.T, card layout.Card, caption string) layout.Table {
	t.Helper()
	for _, b := range card.Body {
		if tbl, ok := b.(layout.Table); ok && tbl.Caption == caption {
			return tbl
		}
	}
	t.Fatalf("table %q not found", caption)
	return layout.Table{}
}

func TestNormalize_SectionOrder(t *testing.T) {
	settings := config.DefaultSettings()

	blocks := Normalize(sampleSnapshot(), settings, time.Now())

	require.Len(t, blocks, 6)
	var titles []string
	for _, b := range blocks {
		card, ok := b.(layout.Card)
		require.True(t, ok)
		titles = append(titles, card.Title)
	}
	assert.Equal(t, []string{
		"Identity", "Checklist", "Evaluation", "Target & Achievement", "Project Tracking", "Schedule",
	}, titles)
}

func TestNormalize_IsDeterministic(t *testing.T) {
	settings := config.DefaultSettings()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	snap := sampleSnapshot()
	snap.Target = map[string]any{"b": 1.0, "a": 2.0, "c": ""}

	first := Normalize(snap, settings, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Normalize(snap, settings, now))
	}
}

func TestChecklistCard_RowsFollowConfiguration(t *testing.T) {
	settings := config.DefaultSettings()

	card := checklistCard(sampleSnapshot().Checklist, settings)

	require.Len(t, card.Body, len(settings.Checklist))
	for i, sec := range settings.Checklist {
		tbl := card.Body[i].(layout.Table)
		assert.Equal(t, sec.Title, tbl.Caption)
		assert.Len(t, tbl.Rows, len(sec.Rows))
		for _, row := range tbl.Rows {
			assert.Len(t, row, 3)
		}
	}

	opening := findTable(t, card, "Opening")
	assert.Equal(t, []string{"Store condition", "Good", "clean"}, opening.Rows[0])
	assert.Equal(t, []string{"Stock count", "42 pcs", ""}, opening.Rows[1])
	assert.Equal(t, []string{"Display quality", "", ""}, opening.Rows[2], "out of range score renders empty")

	visit := findTable(t, card, "Outlet Visit")
	assert.Equal(t, []string{"Outlets visited", "", ""}, visit.Rows[0])
	assert.Equal(t, "Yes · Display · Rp 150.000 · 12 pcs", visit.Rows[1][1])
}

func TestChecklistValue(t *testing.T) {
	score := config.ChecklistRow{Kind: config.RowScore}
	assert.Equal(t, "4/5", checklistValue(score, domain.ChecklistEntry{Value: 4.0}, "Rp"))
	assert.Equal(t, "", checklistValue(score, domain.ChecklistEntry{Value: 0.0}, "Rp"))
	assert.Equal(t, "", checklistValue(score, domain.ChecklistEntry{Value: 2.5}, "Rp"))

	number := config.ChecklistRow{Kind: config.RowNumber, Unit: "kg"}
	assert.Equal(t, "1.25 kg", checklistValue(number, domain.ChecklistEntry{Value: "1.25"}, "Rp"))
	assert.Equal(t, "n/a", checklistValue(number, domain.ChecklistEntry{Value: "n/a"}, "Rp"))

	composite := config.ChecklistRow{
		Kind: config.RowComposite,
		Fields: []config.FieldDef{
			{Key: "a", Kind: config.FieldText},
			{Key: "b", Kind: config.FieldText},
			{Key: "c", Kind: config.FieldText},
			{Key: "d", Kind: config.FieldText},
		},
	}
	entry := domain.ChecklistEntry{Fields: map[string]any{"a": "1", "c": "3", "d": "4"}}
	assert.Equal(t, "1 · 3", checklistValue(composite, entry, "Rp"))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "Rp 0", formatCurrency("Rp", 0))
	assert.Equal(t, "Rp 999", formatCurrency("Rp", 999))
	assert.Equal(t, "Rp 1.500.000,50", formatCurrency("Rp", 1500000.5))
	assert.Equal(t, "-Rp 2.000", formatCurrency("Rp", -2000))
	assert.Equal(t, "150.000", formatCurrency("", 150000))
}

func TestEvaluationCard(t *testing.T) {
	settings := config.DefaultSettings()
	identity := domain.Identity{Name: "Budi"}

	t.Run("per-person theme without people scores the owner", func(t *testing.T) {
		card := evaluationCard(domain.Evaluation{Theme: domain.ThemeAttitude}, identity, settings)

		require.Len(t, card.Body, 1)
		tbl := card.Body[0].(layout.Table)
		assert.Equal(t, "Budi · average 3.0", tbl.Caption)
		require.Len(t, tbl.Rows, 5)
		for _, row := range tbl.Rows {
			assert.Equal(t, "3", row[2])
		}
	})

	t.Run("one table per tracked person", func(t *testing.T) {
		ev := domain.Evaluation{
			Theme:  domain.ThemeCompetency,
			People: []string{"Ani", " ", "Dodi", "Ani"},
			Scores: map[string]map[string]int{
				"Ani": {"Product knowledge": 5, "Selling skill": 5, "Negotiation": 9},
			},
			Note: "Good week",
		}
		card := evaluationCard(ev, identity, settings)

		require.Len(t, card.Body, 3)
		assert.Equal(t, "Ani · average 4.0", card.Body[0].(layout.Table).Caption)
		assert.Equal(t, "Dodi · average 3.0", card.Body[1].(layout.Table).Caption)
		assert.Equal(t, layout.Text{Content: "Good week"}, card.Body[2])
	})

	t.Run("shared theme", func(t *testing.T) {
		ev := domain.Evaluation{
			Theme:  domain.ThemeCompliance,
			Scores: map[string]map[string]int{"": {"Uniform": 1}},
		}
		card := evaluationCard(ev, identity, settings)

		tbl := card.Body[0].(layout.Table)
		assert.Equal(t, "Average 2.5", tbl.Caption)
		assert.Equal(t, []string{"2", "Uniform", "1"}, tbl.Rows[1])
	})

	t.Run("no theme", func(t *testing.T) {
		card := evaluationCard(domain.Evaluation{}, identity, settings)

		assert.Equal(t, "none", card.Badge)
		require.Len(t, card.Body, 1)
		assert.IsType(t, layout.Text{}, card.Body[0])
	})
}

func TestScheduleCard_Ordering(t *testing.T) {
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	entries := []domain.ScheduleEntry{
		{ID: "old", Date: "2026-10-16", UpdatedAt: base},
		{ID: "a", Date: "2026-10-18", UpdatedAt: base, Plan: []string{"first"}},
		{ID: "b", Date: "2026-10-18", UpdatedAt: base.Add(time.Hour), Plan: []string{"second"}, PlanLocked: true},
	}

	card := scheduleCard(entries, config.DefaultSettings())

	require.Len(t, card.Body, 2)
	latest := card.Body[0].(layout.Card)
	assert.Equal(t, "2026-10-18", latest.Title)
	require.Len(t, latest.Body, 6)
	assert.Equal(t, layout.KeyValueList{Entries: []layout.KeyValue{
		{Key: "Plan", Value: "Locked"},
		{Key: "Realization", Value: "Open"},
	}}, latest.Body[0])
	assert.Equal(t, layout.Text{Content: "Plan\n• second"}, latest.Body[1])
	assert.Equal(t, layout.Text{Content: "Realization\n-"}, latest.Body[2])
	assert.Equal(t, layout.Text{Content: "Plan\n• first"}, latest.Body[4])
	assert.Equal(t, "2026-10-16", card.Body[1].(layout.Card).Title)
}
