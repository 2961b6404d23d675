package daxtra

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Code is a CSERROR code. The remote sends either a string or a number.
type Code string

// UnmarshalJSON accepts both string and numeric codes.
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("CSERROR code must be a string or number: %w", err)
	}
	*c = Code(n.String())
	return nil
}

// CSError is the remote's error envelope.
type CSError struct {
	Code    Code   `json:"code"`
	Message string `json:"message,omitempty"`
}

// ResumeEnvelope wraps a structured resume in the nested response format.
type ResumeEnvelope struct {
	StructuredResume json.RawMessage `json:"StructuredResume,omitempty"`
}

// CandidateProfile is the decoded response of the resume endpoints.
type CandidateProfile struct {
	Resume           *ResumeEnvelope `json:"Resume,omitempty"`
	StructuredResume json.RawMessage `json:"StructuredResume,omitempty"`
	CSError          *CSError        `json:"CSERROR,omitempty"`
	// FullProfileToken is the legacy name of the continuation token.
	FullProfileToken string `json:"full_profile_token,omitempty"`
	Phase2Token      string `json:"phase2_token,omitempty"`
}

// ContinuationToken returns the token that redeems the full profile, preferring phase2_token.
func (p *CandidateProfile) ContinuationToken() string {
	if p == nil {
		return ""
	}
	if p.Phase2Token != "" {
		return p.Phase2Token
	}
	return p.FullProfileToken
}

// ResumeData returns the structured resume, whichever of the two response formats carried it.
// A top-level value of null, false, "" or 0 counts as absent.
func (p *CandidateProfile) ResumeData() json.RawMessage {
	if p == nil {
		return nil
	}
	if !emptyValue(p.StructuredResume) {
		return p.StructuredResume
	}
	if p.Resume != nil {
		return p.Resume.StructuredResume
	}
	return nil
}

func emptyValue(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", `""`:
		return true
	}
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f == 0
	}
	return false
}

// VacancyProfile is the decoded response of the job order endpoint.
type VacancyProfile struct {
	StructuredResume json.RawMessage `json:"StructuredResume,omitempty"`
	CSError          *CSError        `json:"CSERROR,omitempty"`
}

// TwoPhaseResult holds both phases of a two-phase parse.
type TwoPhaseResult struct {
	Personal *CandidateProfile `json:"personal"`
	Full     *CandidateProfile `json:"full"`
}
