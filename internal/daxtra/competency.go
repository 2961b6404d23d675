package daxtra

import (
	"bytes"
	"encoding/json"
)

// Competency is a flattened skill record from a structured resume.
type Competency struct {
	SkillName        string   `json:"skillName,omitempty"`
	Auth             *bool    `json:"auth,omitempty"`
	SkillLevel       *float64 `json:"skillLevel,omitempty"`
	SkillProficiency string   `json:"skillProficiency,omitempty"`
	SkillAliasArray  []string `json:"skillAliasArray,omitempty"`
	LastUsed         string   `json:"lastUsed,omitempty"`
}

// ExtractCompetencies returns the profile's skills in document order. The
// Competency collection may be a single object or an array; entries that are
// not objects are skipped. It never fails: any unexpected shape yields an
// empty slice.
func ExtractCompetencies(profile *CandidateProfile) []Competency {
	out := []Competency{}

	raw := profile.ResumeData()
	if len(raw) == 0 {
		return out
	}

	var resume map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&resume); err != nil || resume == nil {
		return out
	}

	var entries []any
	switch v := resume["Competency"].(type) {
	case []any:
		entries = v
	case map[string]any:
		entries = []any{v}
	default:
		return out
	}

	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, competencyFrom(obj))
	}
	return out
}

func competencyFrom(obj map[string]any) Competency {
	var c Competency
	if name, ok := obj["skillName"].(string); ok {
		c.SkillName = name
	}
	if auth, ok := obj["auth"].(bool); ok {
		c.Auth = &auth
	}
	if n, ok := obj["skillLevel"].(json.Number); ok {
		if level, err := n.Float64(); err == nil {
			c.SkillLevel = &level
		}
	}
	if p, ok := obj["skillProficiency"].(string); ok {
		c.SkillProficiency = p
	}
	if aliases, ok := obj["skillAliasArray"].([]any); ok {
		c.SkillAliasArray = make([]string, 0, len(aliases))
		for _, a := range aliases {
			if s, ok := a.(string); ok {
				c.SkillAliasArray = append(c.SkillAliasArray, s)
			}
		}
	}
	if lastUsed, ok := obj["lastUsed"].(string); ok {
		c.LastUsed = lastUsed
	}
	return c
}
