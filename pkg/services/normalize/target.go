package normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/de-tools/daily-report/pkg/models/layout"
	"github.com/de-tools/daily-report/pkg/services/config"
)

type TargetKind string

const (
	TargetEmpty    TargetKind = "empty"
	TargetKPI      TargetKind = "kpi"
	TargetTable    TargetKind = "table"
	TargetKeyValue TargetKind = "keyvalue"
)

// TargetData is the classified form of the loosely typed target value. It is
// one of EmptyTarget, KPITarget, TableTarget or KeyValueTarget.
type TargetData interface {
	Kind() TargetKind
	sealed()
}

type EmptyTarget struct{}

type KPITarget struct {
	Rows []KPIRow
}

type KPIRow struct {
	Name    string
	Target  string
	Actual  string
	Percent string
	Filled  bool
}

type TableTarget struct {
	Columns []string
	Rows    []TableRow
}

type TableRow struct {
	Cells  []string
	Filled bool
}

type KeyValueTarget struct {
	Entries []KeyValueEntry
}

type KeyValueEntry struct {
	Key    string
	Value  string
	Filled bool
}

func (EmptyTarget) Kind() TargetKind    { return TargetEmpty }
func (KPITarget) Kind() TargetKind      { return TargetKPI }
func (TableTarget) Kind() TargetKind    { return TargetTable }
func (KeyValueTarget) Kind() TargetKind { return TargetKeyValue }

func (EmptyTarget) sealed()    {}
func (KPITarget) sealed()      {}
func (TableTarget) sealed()    {}
func (KeyValueTarget) sealed() {}

// Field name aliases recognized when deciding whether rows are KPI rows.
// Matching is case-insensitive.
var (
	containerKeys  = []string{"rows", "items", "kpis", "kpi", "data"}
	nameAliases    = []string{"name", "kpi", "label", "metric", "indicator", "item", "title"}
	targetAliases  = []string{"target", "tgt", "plan", "goal"}
	actualAliases  = []string{"actual", "realisasi", "realization", "achieved", "achievement", "real"}
	percentAliases = []string{"percent", "pct", "persen", "percentage"}
)

// ClassifyTarget maps a decoded JSON-like value to exactly one TargetData
// variant. Objects wrapping a rows/items/kpis/kpi/data array are unwrapped
// first.
func ClassifyTarget(v any) TargetData {
	switch x := v.(type) {
	case []any:
		return classifyList(x)
	case []map[string]any:
		list := make([]any, len(x))
		for i, m := range x {
			list[i] = m
		}
		return classifyList(list)
	case map[string]any:
		if len(x) == 0 {
			return EmptyTarget{}
		}
		for _, key := range containerKeys {
			if inner, ok := lookupFold(x, key).([]any); ok {
				return classifyList(inner)
			}
		}
		return classifyMap(x)
	}
	return EmptyTarget{}
}

func classifyList(list []any) TargetData {
	var objects []map[string]any
	for _, e := range list {
		if m, ok := e.(map[string]any); ok && len(m) > 0 {
			objects = append(objects, m)
		}
	}
	if len(objects) == 0 {
		return EmptyTarget{}
	}
	for _, m := range objects {
		if hasAlias(m, targetAliases) || hasAlias(m, actualAliases) || hasAlias(m, percentAliases) {
			return kpiRows(objects)
		}
	}
	return tableRows(objects)
}

func kpiRows(objects []map[string]any) KPITarget {
	out := KPITarget{Rows: make([]KPIRow, 0, len(objects))}
	for i, m := range objects {
		row := KPIRow{
			Name:   stringify(firstAlias(m, nameAliases)),
			Target: stringify(firstAlias(m, targetAliases)),
			Actual: stringify(firstAlias(m, actualAliases)),
			Filled: HasTruthy(m),
		}
		if row.Name == "" {
			row.Name = fmt.Sprintf("KPI %d", i+1)
		}
		if p, ok := toFloat(firstAlias(m, percentAliases)); ok {
			row.Percent = formatPercent(p)
		} else if p, ok := derivedPercent(m); ok {
			row.Percent = formatPercent(p)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func derivedPercent(m map[string]any) (float64, bool) {
	t, okT := toFloat(firstAlias(m, targetAliases))
	a, okA := toFloat(firstAlias(m, actualAliases))
	if !okT || !okA || t == 0 {
		return 0, false
	}
	p := a / t * 100
	return p, !math.IsInf(p, 0) && !math.IsNaN(p)
}

// tableRows builds a generic table whose columns are the union of row keys,
// each row's keys taken in sorted order.
func tableRows(objects []map[string]any) TableTarget {
	var out TableTarget
	seen := map[string]bool{}
	for _, m := range objects {
		for _, k := range sortedKeys(m) {
			if !seen[k] {
				seen[k] = true
				out.Columns = append(out.Columns, k)
			}
		}
	}
	for _, m := range objects {
		cells := make([]string, len(out.Columns))
		for i, col := range out.Columns {
			cells[i] = stringify(m[col])
		}
		out.Rows = append(out.Rows, TableRow{Cells: cells, Filled: HasTruthy(m)})
	}
	return out
}

func classifyMap(m map[string]any) KeyValueTarget {
	var out KeyValueTarget
	for _, k := range sortedKeys(m) {
		out.Entries = append(out.Entries, KeyValueEntry{
			Key:    k,
			Value:  stringify(m[k]),
			Filled: HasTruthy(m[k]),
		})
	}
	return out
}

func lookupFold(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	for _, k := range sortedKeys(m) {
		if strings.EqualFold(k, key) {
			return m[k]
		}
	}
	return nil
}

func hasAlias(m map[string]any, aliases []string) bool {
	for k := range m {
		for _, a := range aliases {
			if strings.EqualFold(k, a) {
				return true
			}
		}
	}
	return false
}

func firstAlias(m map[string]any, aliases []string) any {
	for _, a := range aliases {
		if v := lookupFold(m, a); v != nil {
			return v
		}
	}
	return nil
}

func targetCard(raw any, settings config.Settings) layout.Card {
	data := ClassifyTarget(raw)
	card := layout.Card{Title: settings.Label("target"), Badge: string(data.Kind())}

	switch t := data.(type) {
	case KPITarget:
		filled := false
		rows := make([][]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			filled = filled || r.Filled
			rows = append(rows, []string{r.Name, r.Target, r.Actual, r.Percent, filledLabel(r.Filled)})
		}
		card.Body = []layout.Block{
			statusList(filled),
			layout.Table{Columns: []string{"KPI", "Target", "Actual", "%", "Status"}, Rows: rows},
		}
	case TableTarget:
		filled := false
		rows := make([][]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			filled = filled || r.Filled
			rows = append(rows, append(append([]string(nil), r.Cells...), filledLabel(r.Filled)))
		}
		columns := append(append([]string(nil), t.Columns...), "Status")
		card.Body = []layout.Block{statusList(filled), layout.Table{Columns: columns, Rows: rows}}
	case KeyValueTarget:
		filled := false
		rows := make([][]string, 0, len(t.Entries))
		for _, e := range t.Entries {
			filled = filled || e.Filled
			rows = append(rows, []string{e.Key, e.Value, filledLabel(e.Filled)})
		}
		card.Body = []layout.Block{
			statusList(filled),
			layout.Table{Columns: []string{"Field", "Value", "Status"}, Rows: rows},
		}
	default:
		card.Body = []layout.Block{statusList(false), layout.Text{Content: "No target data"}}
	}
	return card
}

func statusList(filled bool) layout.KeyValueList {
	return layout.KeyValueList{Entries: []layout.KeyValue{{Key: "Status", Value: filledLabel(filled)}}}
}
