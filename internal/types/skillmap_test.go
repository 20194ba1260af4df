package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkillMap_NormalizesNames(t *testing.T) {
	skills, err := ParseSkillMap([]byte(`{" React.JS ": 4, "plumbing": 2}`))
	require.NoError(t, err)

	assert.Equal(t, SkillMap{"react.js": 4, "plumbing": 2}, skills)
}

func TestParseSkillMap_EmptyBlob(t *testing.T) {
	skills, err := ParseSkillMap(nil)
	require.NoError(t, err)
	assert.Empty(t, skills)
}

func TestParseSkillMap_RejectsOutOfRangeLevels(t *testing.T) {
	_, err := ParseSkillMap([]byte(`{"react": 6}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside")

	_, err = ParseSkillMap([]byte(`{"react": 0}`))
	require.Error(t, err)
}

func TestParseSkillMap_RejectsNonIntegerLevel(t *testing.T) {
	_, err := ParseSkillMap([]byte(`{"react": 3.5}`))
	require.Error(t, err)
}

func TestParseSkillMap_RejectsEmptyName(t *testing.T) {
	_, err := ParseSkillMap([]byte(`{"  ": 3}`))
	require.Error(t, err)
}

func TestSkillMapValidate(t *testing.T) {
	assert.NoError(t, SkillMap{"react": 3}.Validate())
	assert.Error(t, SkillMap{"react": 9}.Validate())
	assert.Error(t, SkillMap{"": 3}.Validate())
}

func TestMatchQueryValidate_RequiresSkills(t *testing.T) {
	q := MatchQuery{ID: "p1", RequiredSkills: SkillMap{}}
	assert.Error(t, q.Validate())

	q.RequiredSkills = SkillMap{"react": 3}
	assert.NoError(t, q.Validate())
}

func TestTotalExperienceYears(t *testing.T) {
	p := CandidateProfile{
		Experience: []ExperienceRecord{
			{Title: "Electrician", Years: 2.5},
			{Title: "Helper", Years: 1},
		},
	}
	assert.InDelta(t, 3.5, p.TotalExperienceYears(), 0.0001)
}
