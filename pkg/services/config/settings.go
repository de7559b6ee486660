package config

import (
	"maps"
	"slices"

	"github.com/de-tools/daily-report/pkg/models/domain"
)

type RowKind string

const (
	RowOption    RowKind = "option"
	RowNumber    RowKind = "number"
	RowScore     RowKind = "score"
	RowComposite RowKind = "composite"
)

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldCurrency FieldKind = "currency"
	FieldNumber   FieldKind = "number"
)

// Settings is the resolved report configuration consumed by the normalizer.
// Role overrides are merged by ForRole before it reaches the core.
type Settings struct {
	Title          string                  `mapstructure:"title"`
	Labels         map[string]string       `mapstructure:"labels"`
	CurrencyPrefix string                  `mapstructure:"currency_prefix"`
	Checklist      []ChecklistSection      `mapstructure:"checklist"`
	Evaluation     map[string][]string     `mapstructure:"evaluation"`
	Overrides      map[string]RoleOverride `mapstructure:"overrides"`
}

type ChecklistSection struct {
	Key   string         `mapstructure:"key"`
	Title string         `mapstructure:"title"`
	Rows  []ChecklistRow `mapstructure:"rows"`
}

type ChecklistRow struct {
	Key   string  `mapstructure:"key"`
	Label string  `mapstructure:"label"`
	Kind  RowKind `mapstructure:"kind"`
	Unit  string  `mapstructure:"unit"`
	// Fields lists up to three supplementary inputs of a composite row.
	Fields []FieldDef `mapstructure:"fields"`
}

type FieldDef struct {
	Key  string    `mapstructure:"key"`
	Kind FieldKind `mapstructure:"kind"`
	Unit string    `mapstructure:"unit"`
}

// RoleOverride replaces labels, row labels ("section.row" keys), the checklist
// or evaluation item lists for one role.
type RoleOverride struct {
	Title      string              `mapstructure:"title"`
	Labels     map[string]string   `mapstructure:"labels"`
	RowLabels  map[string]string   `mapstructure:"row_labels"`
	Checklist  []ChecklistSection  `mapstructure:"checklist"`
	Evaluation map[string][]string `mapstructure:"evaluation"`
}

// Label returns the configured label for key, falling back to key itself.
func (s Settings) Label(key string) string {
	if l, ok := s.Labels[key]; ok && l != "" {
		return l
	}
	return key
}

// Items returns the fixed item list scored under theme.
func (s Settings) Items(theme domain.Theme) []string {
	return s.Evaluation[string(theme)]
}

// ForRole returns a copy of s with the overrides of role applied. The returned
// settings carry no overrides.
func (s Settings) ForRole(role string) Settings {
	out := Settings{
		Title:          s.Title,
		Labels:         maps.Clone(s.Labels),
		CurrencyPrefix: s.CurrencyPrefix,
		Checklist:      cloneSections(s.Checklist),
		Evaluation:     make(map[string][]string, len(s.Evaluation)),
	}
	if out.Labels == nil {
		out.Labels = map[string]string{}
	}
	for theme, items := range s.Evaluation {
		out.Evaluation[theme] = slices.Clone(items)
	}

	ov, ok := s.Overrides[role]
	if !ok {
		return out
	}
	if ov.Title != "" {
		out.Title = ov.Title
	}
	maps.Copy(out.Labels, ov.Labels)
	if len(ov.Checklist) > 0 {
		out.Checklist = cloneSections(ov.Checklist)
	}
	for theme, items := range ov.Evaluation {
		out.Evaluation[theme] = slices.Clone(items)
	}
	for i := range out.Checklist {
		sec := &out.Checklist[i]
		for j := range sec.Rows {
			if l, ok := ov.RowLabels[sec.Key+"."+sec.Rows[j].Key]; ok {
				sec.Rows[j].Label = l
			}
		}
	}
	return out
}

func cloneSections(in []ChecklistSection) []ChecklistSection {
	out := make([]ChecklistSection, len(in))
	for i, sec := range in {
		out[i] = sec
		out[i].Rows = make([]ChecklistRow, len(sec.Rows))
		for j, row := range sec.Rows {
			out[i].Rows[j] = row
			out[i].Rows[j].Fields = slices.Clone(row.Fields)
		}
	}
	return out
}

func DefaultSettings() Settings {
	return Settings{
		Title:          "Daily Report",
		CurrencyPrefix: "Rp",
		Labels: map[string]string{
			"identity":   "Identity",
			"checklist":  "Checklist",
			"evaluation": "Evaluation",
			"target":     "Target & Achievement",
			"projects":   "Project Tracking",
			"schedule":   "Schedule",
			"signature":  "Signature",
		},
		Checklist: []ChecklistSection{
			{
				Key:   "opening",
				Title: "Opening",
				Rows: []ChecklistRow{
					{Key: "store_condition", Label: "Store condition", Kind: RowOption},
					{Key: "stock_count", Label: "Stock count", Kind: RowNumber, Unit: "pcs"},
					{Key: "display", Label: "Display quality", Kind: RowScore},
				},
			},
			{
				Key:   "visit",
				Title: "Outlet Visit",
				Rows: []ChecklistRow{
					{Key: "visited", Label: "Outlets visited", Kind: RowNumber, Unit: "outlets"},
					{
						Key: "promo", Label: "Promo activity", Kind: RowComposite,
						Fields: []FieldDef{
							{Key: "detail", Kind: FieldText},
							{Key: "budget", Kind: FieldCurrency},
							{Key: "qty", Kind: FieldNumber, Unit: "pcs"},
						},
					},
					{Key: "competitor", Label: "Competitor activity", Kind: RowOption},
				},
			},
			{
				Key:   "closing",
				Title: "Closing",
				Rows: []ChecklistRow{
					{Key: "cash_deposit", Label: "Cash deposit", Kind: RowComposite,
						Fields: []FieldDef{{Key: "amount", Kind: FieldCurrency}}},
					{Key: "cleanliness", Label: "Cleanliness", Kind: RowScore},
					{Key: "report_sent", Label: "Report sent", Kind: RowOption},
				},
			},
		},
		Evaluation: map[string][]string{
			string(domain.ThemeAttitude): {
				"Discipline", "Responsibility", "Teamwork", "Initiative", "Communication",
			},
			string(domain.ThemeCompetency): {
				"Product knowledge", "Selling skill", "Negotiation", "Administration",
			},
			string(domain.ThemeAchievement): {
				"Sales target", "New outlets", "Collection", "Display compliance",
			},
			string(domain.ThemeCompliance): {
				"SOP adherence", "Uniform", "Attendance", "Reporting on time",
			},
		},
	}
}
