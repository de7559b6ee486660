package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "false", value: false, want: false},
		{name: "true", value: true, want: true},
		{name: "empty string", value: "", want: false},
		{name: "whitespace string", value: "  \t", want: false},
		{name: "text", value: "done", want: true},
		{name: "zero float", value: 0.0, want: false},
		{name: "nan", value: math.NaN(), want: false},
		{name: "non-zero float", value: -1.5, want: true},
		{name: "zero json number", value: json.Number("0"), want: false},
		{name: "json number", value: json.Number("12"), want: true},
		{name: "zero int", value: 0, want: false},
		{name: "int", value: 7, want: true},
		{name: "empty list", value: []any{}, want: false},
		{name: "list of blanks", value: []any{"", 0.0, nil, false}, want: false},
		{name: "list with one value", value: []any{"", 3.0}, want: true},
		{name: "empty map", value: map[string]any{}, want: false},
		{name: "nested map", value: map[string]any{"a": map[string]any{"b": []any{true}}}, want: true},
		{name: "typed slice", value: []string{"", " ", "x"}, want: true},
		{name: "typed map of blanks", value: map[string]string{"a": ""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTruthy(tt.value))
		})
	}
}
