package orf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		dist     int64
		hasStop  bool
		expected Label
	}{
		{"far upstream", 200, true, NMDLikely},
		{"just above band", 56, true, NMDLikely},
		{"band upper edge", 55, true, NMDBorderline},
		{"just above threshold", 51, true, NMDBorderline},
		{"at threshold", 50, true, NMDBorderline},
		{"just below threshold", 49, true, NMDBorderline},
		{"band lower edge", 45, true, NMDBorderline},
		{"just below band", 44, true, NMDUnlikely},
		{"at junction", 0, true, NMDUnlikely},
		{"downstream of junction", -30, true, NMDUnlikely},
		{"no stop codon", 200, false, NMDUnlikely},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, _ := Classify(tt.dist, tt.hasStop, DefaultNMDThreshold, DefaultNMDBorderline)
			assert.Equal(t, tt.expected, label)
		})
	}
}

func TestClassify_Score(t *testing.T) {
	_, score := Classify(60, true, DefaultNMDThreshold, DefaultNMDBorderline)
	assert.InDelta(t, 10, score, 1e-9)

	_, score = Classify(40, true, DefaultNMDThreshold, DefaultNMDBorderline)
	assert.InDelta(t, -10, score, 1e-9)
}

func TestClassify_CustomThreshold(t *testing.T) {
	label, _ := Classify(60, true, 100, 5)
	assert.Equal(t, NMDUnlikely, label)

	label, _ = Classify(120, true, 100, 5)
	assert.Equal(t, NMDLikely, label)

	// Zero band collapses borderline to the exact threshold.
	label, _ = Classify(50, true, 50, 0)
	assert.Equal(t, NMDBorderline, label)
	label, _ = Classify(51, true, 50, 0)
	assert.Equal(t, NMDLikely, label)
}

func TestPassesFilter(t *testing.T) {
	assert.True(t, Record{NMD: NMDUnlikely}.PassesFilter())
	assert.True(t, Record{NMD: NMDBorderline}.PassesFilter())
	assert.False(t, Record{NMD: NMDLikely}.PassesFilter())
	assert.False(t, Record{Missing: true}.PassesFilter())
}
