package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name   string
		input  []string
		expect []string
	}{
		{name: "nil", input: nil, expect: nil},
		{name: "only blanks", input: []string{"", "  "}, expect: nil},
		{name: "trims and keeps order", input: []string{" b ", "a"}, expect: []string{"b", "a"}},
		{name: "drops repeats after trimming", input: []string{"a", " a", "b", "a "}, expect: []string{"a", "b"}},
		{name: "case sensitive", input: []string{"A", "a"}, expect: []string{"A", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, DedupeAndTrim(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, SplitList("broker-1:9092, broker-2:9092,broker-1:9092,"))
	assert.Nil(t, SplitList(""))
}
