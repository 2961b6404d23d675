package daxtra

import (
	"encoding/json"
	"errors"

	"github.com/jonathan/parser-service/internal/schemas"
	"github.com/jonathan/parser-service/internal/transport"
)

const defaultDomainMessage = "API returned error"

func decodeCandidate(body *transport.Body) (*CandidateProfile, error) {
	var profile CandidateProfile
	if err := decode(body, schemas.CandidateProfile, "Invalid candidate profile response format", &profile); err != nil {
		return nil, err
	}
	if err := domainError(profile.CSError, body); err != nil {
		return nil, err
	}
	return &profile, nil
}

func decodeVacancy(body *transport.Body) (*VacancyProfile, error) {
	var profile VacancyProfile
	if err := decode(body, schemas.VacancyProfile, "Invalid vacancy profile response format", &profile); err != nil {
		return nil, err
	}
	if err := domainError(profile.CSError, body); err != nil {
		return nil, err
	}
	return &profile, nil
}

// decode checks body against the named schema and unmarshals it into out.
func decode(body *transport.Body, schema, message string, out any) error {
	var raw []byte
	var value any
	if body != nil {
		raw, value = body.Raw, body.Value
	}
	if body == nil || !body.JSON {
		return &ValidationError{Message: message, Fields: []string{"(root): response is not JSON"}, Body: value}
	}

	if err := schemas.Validate(schema, raw); err != nil {
		vErr := &ValidationError{Message: message, Body: value, Cause: err}
		var sErr *schemas.ValidationError
		if errors.As(err, &sErr) {
			vErr.Fields = sErr.Fields()
			vErr.Cause = nil
		}
		return vErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ValidationError{Message: message, Body: value, Cause: err}
	}
	return nil
}

// domainError reports a CSERROR envelope inside an otherwise successful response.
func domainError(env *CSError, body *transport.Body) error {
	if env == nil {
		return nil
	}
	msg := env.Message
	if msg == "" {
		msg = defaultDomainMessage
	}
	return &DomainError{Code: string(env.Code), Message: msg, Body: body.Value}
}
