package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/config"
)

const (
	compositeSeparator = " · "
	maxCompositeFields = 3
)

var checklistColumns = []string{"Item", "Value", "Note"}

// checklistCard renders one three-column table per configured section.
// Configured rows without a stored entry yield empty value and note cells.
func checklistCard(values map[string]map[string]domain.ChecklistEntry, settings config.Settings) layout.Card {
	card := layout.Card{Title: settings.Label("checklist")}
	for _, sec := range settings.Checklist {
		stored := values[sec.Key]
		rows := make([][]string, 0, len(sec.Rows))
		for _, row := range sec.Rows {
			value, note := "", ""
			if entry, ok := stored[row.Key]; ok {
				value = checklistValue(row, entry, settings.CurrencyPrefix)
				note = strings.TrimSpace(entry.Note)
			}
			rows = append(rows, []string{row.Label, value, note})
		}
		card.Body = append(card.Body, layout.Table{
			Caption: sec.Title,
			Columns: checklistColumns,
			Rows:    rows,
		})
	}
	if len(card.Body) == 0 {
		card.Body = []layout.Block{layout.Text{Content: "No checklist configured"}}
	}
	return card
}

func checklistValue(row config.ChecklistRow, entry domain.ChecklistEntry, currency string) string {
	switch row.Kind {
	case config.RowNumber:
		if f, ok := toFloat(entry.Value); ok {
			return withUnit(formatNumber(f), row.Unit)
		}
		return stringify(entry.Value)
	case config.RowScore:
		return formatScore(entry.Value)
	case config.RowComposite:
		return compositeValue(row, entry, currency)
	default:
		return stringify(entry.Value)
	}
}

// formatScore renders an integral 1..5 score as "n/5"; anything else is empty.
func formatScore(v any) string {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f < 1 || f > 5 {
		return ""
	}
	return fmt.Sprintf("%d/5", int(f))
}

// compositeValue joins the selected option with up to three formatted
// supplementary fields, skipping empty parts.
func compositeValue(row config.ChecklistRow, entry domain.ChecklistEntry, currency string) string {
	var parts []string
	if s := stringify(entry.Value); s != "" {
		parts = append(parts, s)
	}
	fields := row.Fields
	if len(fields) > maxCompositeFields {
		fields = fields[:maxCompositeFields]
	}
	for _, fd := range fields {
		if s := fieldValue(fd, entry.Fields[fd.Key], currency); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, compositeSeparator)
}

func fieldValue(fd config.FieldDef, raw any, currency string) string {
	switch fd.Kind {
	case config.FieldCurrency:
		if f, ok := toFloat(raw); ok {
			return formatCurrency(currency, f)
		}
	case config.FieldNumber:
		if f, ok := toFloat(raw); ok {
			return withUnit(formatNumber(f), fd.Unit)
		}
	}
	return stringify(raw)
}
