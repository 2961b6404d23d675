package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CandidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "direct structured resume", doc: `{"StructuredResume":{"Competency":[]}}`},
		{name: "nested resume", doc: `{"Resume":{"StructuredResume":{}}}`},
		{name: "tokens", doc: `{"phase2_token":"abc","full_profile_token":"def"}`},
		{name: "numeric error code", doc: `{"CSERROR":{"code":12,"message":"bad"}}`},
		{name: "string error code", doc: `{"CSERROR":{"code":"E12"}}`},
		{name: "empty object", doc: `{}`},
		{name: "array root", doc: `[]`, wantErr: true},
		{name: "string root", doc: `"text"`, wantErr: true},
		{name: "error without code", doc: `{"CSERROR":{"message":"bad"}}`, wantErr: true},
		{name: "boolean code", doc: `{"CSERROR":{"code":true}}`, wantErr: true},
		{name: "numeric token", doc: `{"phase2_token":5}`, wantErr: true},
		{name: "resume not object", doc: `{"Resume":"x"}`, wantErr: true},
		{name: "not json", doc: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(CandidateProfile, []byte(tt.doc))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.NotEmpty(t, vErr.Errors)
			assert.Equal(t, CandidateProfile, vErr.Schema)
		})
	}
}

func TestValidate_VacancyProfile(t *testing.T) {
	assert.NoError(t, Validate(VacancyProfile, []byte(`{"StructuredResume":{"Title":"Engineer"}}`)))
	assert.Error(t, Validate(VacancyProfile, []byte(`{"CSERROR":{"code":null}}`)))
	assert.Error(t, Validate(VacancyProfile, []byte(`42`)))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing", []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "schema not found")
}
