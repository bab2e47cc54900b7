package gtf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exonOnlyGTF = `##description: Test GTF
chr1	HAVANA	exon	1	99	.	+	.	gene_id "ENSG01"; transcript_id "ENST01"; gene_name "GENEA"; exon_number "1"; transcript_type "protein_coding";
chr1	HAVANA	exon	100	200	.	+	.	gene_id "ENSG01"; transcript_id "ENST01"; gene_name "GENEA"; exon_number "2"; transcript_type "protein_coding";
chr1	HAVANA	exon	201	300	.	+	.	gene_id "ENSG01"; transcript_id "ENST01"; gene_name "GENEA"; exon_number "3"; transcript_type "protein_coding";
`

const mixedFeatureGTF = `chr1	HAVANA	gene	1	300	.	+	.	gene_id "ENSG01";
chr1	HAVANA	exon	1	99	.	+	.	gene_id "ENSG01"; transcript_id "ENST01"; exon_number "1";
`

func TestParse_ExonOnly(t *testing.T) {
	loader := NewLoader("")
	exons, err := loader.Parse(strings.NewReader(exonOnlyGTF))
	require.NoError(t, err)
	require.Len(t, exons, 3)

	assert.Equal(t, "chr1", exons[0].Seqname)
	assert.Equal(t, int64(1), exons[0].Start)
	assert.Equal(t, int64(99), exons[0].End)
	assert.Equal(t, int8(1), exons[0].Strand)
	assert.Equal(t, "ENST01", exons[0].TranscriptID)
	assert.Equal(t, "ENSG01", exons[0].GeneID)
	assert.Equal(t, "GENEA", exons[0].GeneName)
	assert.Equal(t, 1, exons[0].ExonNumber)
	assert.Equal(t, "protein_coding", exons[0].TranscriptType)
	assert.Equal(t, int64(99), exons[0].Length())
}

func TestParse_RejectsNonExonFeatures(t *testing.T) {
	loader := NewLoader("")
	_, err := loader.Parse(strings.NewReader(mixedFeatureGTF))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonExonFeature))
}

func TestParse_FilterFeatures(t *testing.T) {
	loader := NewLoader("")
	loader.FilterFeatures = true
	exons, err := loader.Parse(strings.NewReader(mixedFeatureGTF))
	require.NoError(t, err)
	require.Len(t, exons, 1)
	assert.Equal(t, "ENST01", exons[0].TranscriptID)
}

func TestParse_MissingTranscriptID(t *testing.T) {
	content := "chr1	HAVANA	exon	1	99	.	+	.	gene_id \"ENSG01\";\n"
	loader := NewLoader("")
	_, err := loader.Parse(strings.NewReader(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcript_id")
}

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:  "basic attributes",
			input: `gene_id "ENSG01"; transcript_id "ENST01"; gene_name "GENEA";`,
			expected: map[string]string{
				"gene_id":       "ENSG01",
				"transcript_id": "ENST01",
				"gene_name":     "GENEA",
			},
		},
		{
			name:  "trailing whitespace and empty parts",
			input: `gene_id "ENSG01";  exon_number "2"; `,
			expected: map[string]string{
				"gene_id":     "ENSG01",
				"exon_number": "2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseAttributes(tt.input)
			for key, want := range tt.expected {
				assert.Equal(t, want, result[key], "parseAttributes()[%q]", key)
			}
		})
	}
}

func TestStripVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ENST00000311936.8", "ENST00000311936"},
		{"ENSG00000133703.14", "ENSG00000133703"},
		{"ENST00000311936", "ENST00000311936"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, stripVersion(tt.input), "stripVersion(%q)", tt.input)
	}
}

func TestParseStrand(t *testing.T) {
	assert.Equal(t, int8(1), ParseStrand("+"))
	assert.Equal(t, int8(-1), ParseStrand("-"))
	assert.Equal(t, "+", FormatStrand(1))
	assert.Equal(t, "-", FormatStrand(-1))
}

func TestExonOverlapContains(t *testing.T) {
	e := Exon{Start: 100, End: 200}
	assert.True(t, e.Overlaps(150, 250))
	assert.True(t, e.Overlaps(200, 300))
	assert.False(t, e.Overlaps(201, 300))
	assert.True(t, e.Contains(150, 180))
	assert.False(t, e.Contains(150, 250))
}
