// Package types provides type definitions for structured data used throughout the matching service.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Proficiency level bounds for skills.
const (
	MinSkillLevel = 1
	MaxSkillLevel = 5
)

// SkillMap maps a skill name (case-insensitive) to a proficiency level 1-5.
// It is used for both job requirements and candidate profiles.
type SkillMap map[string]int

// ParseSkillMap parses a loosely-typed JSON blob (as stored by the CRUD
// layer) into a validated SkillMap. Keys are normalized to lowercase and
// trimmed; levels outside [1,5] are rejected.
func ParseSkillMap(raw []byte) (SkillMap, error) {
	if len(raw) == 0 {
		return SkillMap{}, nil
	}

	var loose map[string]json.Number
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("failed to parse skill map: %w", err)
	}

	skills := make(SkillMap, len(loose))
	for name, num := range loose {
		normalized := NormalizeSkillName(name)
		if normalized == "" {
			return nil, fmt.Errorf("skill map contains an empty skill name")
		}
		level, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("skill %q has a non-integer level %q", normalized, num.String())
		}
		if level < MinSkillLevel || level > MaxSkillLevel {
			return nil, fmt.Errorf("skill %q has level %d outside [%d,%d]", normalized, level, MinSkillLevel, MaxSkillLevel)
		}
		skills[normalized] = int(level)
	}
	return skills, nil
}

// NormalizeSkillName lowercases and trims a skill name for comparison.
func NormalizeSkillName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalized returns a copy of the map with all keys normalized.
func (m SkillMap) Normalized() SkillMap {
	out := make(SkillMap, len(m))
	for name, level := range m {
		out[NormalizeSkillName(name)] = level
	}
	return out
}

// Validate checks that every entry has a non-empty name and an in-range level.
func (m SkillMap) Validate() error {
	for name, level := range m {
		if NormalizeSkillName(name) == "" {
			return fmt.Errorf("skill map contains an empty skill name")
		}
		if level < MinSkillLevel || level > MaxSkillLevel {
			return fmt.Errorf("skill %q has level %d outside [%d,%d]", name, level, MinSkillLevel, MaxSkillLevel)
		}
	}
	return nil
}
