package daxtra

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProfile(t *testing.T, raw string) *CandidateProfile {
	t.Helper()
	var p CandidateProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

func TestExtractCompetencies_SingleObject(t *testing.T) {
	p := mustProfile(t, `{"StructuredResume":{"Competency":{"skillName":"X","skillLevel":9}}}`)

	got := ExtractCompetencies(p)
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].SkillName)
	require.NotNil(t, got[0].SkillLevel)
	assert.Equal(t, 9.0, *got[0].SkillLevel)
	assert.Nil(t, got[0].Auth)
	assert.Nil(t, got[0].SkillAliasArray)
}

func TestExtractCompetencies_ArrayKeepsOrderAndDropsMalformed(t *testing.T) {
	p := mustProfile(t, `{"Resume":{"StructuredResume":{"Competency":[
		{"skillName":"Go","auth":true,"skillLevel":8,"skillProficiency":"EXCELLENT","skillAliasArray":["golang",3],"lastUsed":"2024-01"},
		"not an object",
		null,
		42,
		{"skillName":"SQL","skillLevel":"high","skillAliasArray":"sql"}
	]}}}`)

	got := ExtractCompetencies(p)
	require.Len(t, got, 2)

	assert.Equal(t, "Go", got[0].SkillName)
	require.NotNil(t, got[0].Auth)
	assert.True(t, *got[0].Auth)
	assert.Equal(t, 8.0, *got[0].SkillLevel)
	assert.Equal(t, "EXCELLENT", got[0].SkillProficiency)
	assert.Equal(t, []string{"golang"}, got[0].SkillAliasArray)
	assert.Equal(t, "2024-01", got[0].LastUsed)

	assert.Equal(t, "SQL", got[1].SkillName)
	assert.Nil(t, got[1].SkillLevel, "non-numeric levels are dropped")
	assert.Nil(t, got[1].SkillAliasArray, "non-array aliases are dropped")
}

func TestExtractCompetencies_DirectFormatWins(t *testing.T) {
	p := mustProfile(t, `{
		"StructuredResume":{"Competency":{"skillName":"direct"}},
		"Resume":{"StructuredResume":{"Competency":{"skillName":"nested"}}}
	}`)

	got := ExtractCompetencies(p)
	require.Len(t, got, 1)
	assert.Equal(t, "direct", got[0].SkillName)
}

func TestExtractCompetencies_EmptyDirectValueFallsBackToNested(t *testing.T) {
	for _, direct := range []string{`null`, `""`, `0`, `0.0`, `false`} {
		t.Run(direct, func(t *testing.T) {
			p := mustProfile(t, `{"StructuredResume":`+direct+`,"Resume":{"StructuredResume":{"Competency":{"skillName":"nested"}}}}`)

			got := ExtractCompetencies(p)
			require.Len(t, got, 1)
			assert.Equal(t, "nested", got[0].SkillName)
		})
	}
}

func TestExtractCompetencies_EmptyOnUnexpectedShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no resume", raw: `{}`},
		{name: "no competency", raw: `{"StructuredResume":{"PersonalDetails":{}}}`},
		{name: "competency is string", raw: `{"StructuredResume":{"Competency":"Go"}}`},
		{name: "resume is array", raw: `{"StructuredResume":[1,2]}`},
		{name: "resume is null", raw: `{"StructuredResume":null}`},
		{name: "resume is truthy scalar", raw: `{"StructuredResume":"text","Resume":{"StructuredResume":{"Competency":{"skillName":"nested"}}}}`},
		{name: "unrelated", raw: `{"phase2_token":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCompetencies(mustProfile(t, tt.raw))
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}

	assert.Empty(t, ExtractCompetencies(nil))
}
