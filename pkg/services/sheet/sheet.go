// Package sheet exports normalized report blocks as an xlsx workbook, one
// worksheet per top level section.
package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/de-tools/daily-report/pkg/models/layout"
)

const (
	defaultSheet  = "Sheet1"
	maxSheetName  = 31
	fallbackSheet = "Report"
)

type writer struct {
	f      *excelize.File
	sheet  string
	row    int
	header int
	title  int
}

// Workbook writes every top level Card to its own worksheet. Tables become
// captioned ranges with a header row; key/value lists become two column
// ranges; text is written one line per row.
func Workbook(blocks []layout.Block) (*excelize.File, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E5E7EB"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	used := map[string]bool{}
	var loose []layout.Block
	first := true
	addSheet := func(name string) (string, error) {
		name = uniqueName(sheetName(name), used)
		if first {
			first = false
			return name, f.SetSheetName(defaultSheet, name)
		}
		_, err := f.NewSheet(name)
		return name, err
	}

	for _, b := range blocks {
		card, ok := b.(layout.Card)
		if !ok {
			loose = append(loose, b)
			continue
		}
		name, err := addSheet(card.Title)
		if err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", card.Title, err)
		}
		w := &writer{f: f, sheet: name, row: 1, header: header, title: title}
		if err := w.card(card); err != nil {
			return nil, err
		}
	}
	if len(loose) > 0 || first {
		name, err := addSheet(fallbackSheet)
		if err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", fallbackSheet, err)
		}
		w := &writer{f: f, sheet: name, row: 1, header: header, title: title}
		for _, b := range loose {
			if err := w.block(b); err != nil {
				return nil, err
			}
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func (w *writer) set(col int, value string, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		return fmt.Errorf("write %s!%s: %w", w.sheet, cell, err)
	}
	if style != 0 {
		return w.f.SetCellStyle(w.sheet, cell, cell, style)
	}
	return nil
}

func (w *writer) line(style int, values ...string) error {
	for i, v := range values {
		if err := w.set(i+1, v, style); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

func (w *writer) block(b layout.Block) error {
	switch v := b.(type) {
	case layout.Card:
		return w.card(v)
	case layout.Table:
		return w.table(v)
	case layout.KeyValueList:
		for _, e := range v.Entries {
			if err := w.line(0, e.Key, e.Value); err != nil {
				return err
			}
		}
		w.row++
	case layout.Text:
		for _, l := range strings.Split(v.Content, "\n") {
			if err := w.line(0, l); err != nil {
				return err
			}
		}
		w.row++
	}
	return nil
}

func (w *writer) card(c layout.Card) error {
	heading := []string{c.Title}
	if c.Badge != "" {
		heading = append(heading, c.Badge)
	}
	if err := w.line(w.title, heading...); err != nil {
		return err
	}
	for _, b := range c.Body {
		if err := w.block(b); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) table(t layout.Table) error {
	if t.Caption != "" {
		if err := w.line(w.title, t.Caption); err != nil {
			return err
		}
	}
	if len(t.Columns) > 0 {
		if err := w.line(w.header, t.Columns...); err != nil {
			return err
		}
	}
	for _, r := range t.Rows {
		if err := w.line(0, r...); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

// sheetName strips characters Excel rejects and truncates to 31 runes.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(s))
	s = strings.Trim(s, "'")
	if s == "" {
		s = fallbackSheet
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		r := []rune(name)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
