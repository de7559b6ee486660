// Package layout defines the normalized intermediate representation shared by
// the normalizer, the renderer and the spreadsheet exporter. Blocks are plain
// values with no references back to the data they were built from.
package layout

type Kind string

const (
	KindTable        Kind = "table"
	KindKeyValueList Kind = "key_value"
	KindCard         Kind = "card"
	KindText         Kind = "text"
)

// Block is one of Table, KeyValueList, Card or Text.
type Block interface {
	Kind() Kind
}

type Table struct {
	Caption string
	Columns []string
	Rows    [][]string
}

type KeyValue struct {
	Key   string
	Value string
}

type KeyValueList struct {
	Entries []KeyValue
}

// Card groups nested blocks under a title and an optional badge.
type Card struct {
	Title string
	Badge string
	Body  []Block
}

// Text is free text; newlines separate paragraphs.
type Text struct {
	Content string
}

func (Table) Kind() Kind        { return KindTable }
func (KeyValueList) Kind() Kind { return KindKeyValueList }
func (Card) Kind() Kind         { return KindCard }
func (Text) Kind() Kind         { return KindText }

// Walk visits every block and its nested blocks depth first.
func Walk(blocks []Block, fn func(Block)) {
	for _, b := range blocks {
		fn(b)
		if c, ok := b.(Card); ok {
			Walk(c.Body, fn)
		}
	}
}
