package selection

import (
	"errors"
	"sort"
	"strings"

	"github.com/kajiplatform/matching-service/internal/matching"
	"github.com/kajiplatform/matching-service/internal/types"
)

// ErrNoKeywords is returned when the keyword query tokenizes to nothing.
var ErrNoKeywords = errors.New("skill keyword query is empty")

// SkillSearchResult is one candidate's fit against a keyword query.
type SkillSearchResult struct {
	SubjectID       string   `json:"subject_id"`
	MatchPercentage float64  `json:"match_percentage"`
	MatchedSkills   []string `json:"matched_skills"`
}

// SearchBySkillKeywords is the simpler keyword variant of matching: the query
// is a comma-separated skill list, each token is matched against candidate
// skill names by substring containment in either direction, and candidates
// are ranked by matchedCount/queriedCount*100. Zero-match candidates are
// dropped.
func SearchBySkillKeywords(query string, candidates []types.CandidateProfile) ([]SkillSearchResult, error) {
	keywords := tokenizeKeywords(query)
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	results := make([]SkillSearchResult, 0, len(candidates))
	for _, candidate := range candidates {
		matched := make([]string, 0, len(keywords))
		for _, keyword := range keywords {
			for skill := range candidate.Skills {
				if matching.SkillNamesMatch(keyword, skill) {
					matched = append(matched, keyword)
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}
		sort.Strings(matched)
		results = append(results, SkillSearchResult{
			SubjectID:       candidate.ID,
			MatchPercentage: float64(len(matched)) / float64(len(keywords)) * 100,
			MatchedSkills:   matched,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].MatchPercentage != results[j].MatchPercentage {
			return results[i].MatchPercentage > results[j].MatchPercentage
		}
		return results[i].SubjectID < results[j].SubjectID
	})
	return results, nil
}

// tokenizeKeywords splits a comma-separated skill query into normalized,
// deduplicated tokens.
func tokenizeKeywords(query string) []string {
	seen := make(map[string]bool)
	tokens := make([]string, 0)
	for _, part := range strings.Split(query, ",") {
		token := types.NormalizeSkillName(part)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}
