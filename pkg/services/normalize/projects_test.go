package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
)

func steps(flags ...bool) []domain.ProjectStep {
	out := make([]domain.ProjectStep, len(flags))
	for i, f := range flags {
		out[i] = domain.ProjectStep{Label: "step", Done: f}
	}
	return out
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		steps []domain.ProjectStep
		want  int
	}{
		{name: "no steps", steps: nil, want: 0},
		{name: "none done", steps: steps(false, false), want: 0},
		{name: "one of three", steps: steps(true, false, false), want: 33},
		{name: "two of three", steps: steps(true, true, false), want: 67},
		{name: "half", steps: steps(true, false, true, false), want: 50},
		{name: "all", steps: steps(true, true), want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(tt.steps)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestDeadlineStatusOf(t *testing.T) {
	// Late evening local time still counts as the same calendar day.
	loc := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2026, 10, 18, 23, 30, 0, 0, loc)

	tests := []struct {
		deadline string
		want     DeadlineStatus
	}{
		{deadline: "2026-10-17", want: DeadlineOver},
		{deadline: "2026-10-18", want: DeadlineWarn},
		{deadline: "2026-10-21", want: DeadlineWarn},
		{deadline: "2026-10-22", want: DeadlineOK},
		{deadline: "2026-10-21T08:00:00Z", want: DeadlineWarn},
		{deadline: "", want: DeadlineNone},
		{deadline: "soon", want: DeadlineNone},
	}
	for _, tt := range tests {
		t.Run(tt.deadline, func(t *testing.T) {
			assert.Equal(t, tt.want, DeadlineStatusOf(tt.deadline, now))
		})
	}
}

func TestDaysRemaining_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	now := time.Date(2026, 3, 28, 12, 0, 0, 0, loc)

	days, ok := DaysRemaining("2026-03-30", now)

	require.True(t, ok)
	assert.Equal(t, 2, days)
}

func TestProjectCard(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	p := domain.ProjectView{
		Name:     "Store revamp",
		Deadline: "2026-10-20",
		Steps: []domain.ProjectStep{
			{Label: "Survey", Done: true},
			{Label: "Deal", Done: false},
		},
		NextAction: "Call owner",
	}

	card := projectCard(p, now)

	assert.Equal(t, "Store revamp", card.Title)
	assert.Equal(t, string(DeadlineWarn), card.Badge)
	require.Len(t, card.Body, 2)
	kv := card.Body[0].(layout.KeyValueList)
	assert.Equal(t, "50% (1/2)", kv.Entries[0].Value)
	assert.Equal(t, "2026-10-20 (2 days left)", kv.Entries[1].Value)
	assert.Equal(t, "-", kv.Entries[2].Value)
	assert.Equal(t, "Call owner", kv.Entries[3].Value)
	assert.Equal(t, layout.Text{Content: "[x] Survey\n[ ] Deal"}, card.Body[1])
}
