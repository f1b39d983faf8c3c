package model

import "encoding/json"

// Field is one admin payload field decoded leniently. A value of the wrong
// JSON type (say, a numeric email) is not a decode error: it is recorded as
// present but untyped, and the validator reports it as that field's own
// violation. Only a body that is not valid JSON at all fails decoding.
type Field struct {
	Present  bool
	IsString bool
	Value    string
}

func (f *Field) UnmarshalJSON(b []byte) error {
	f.Present = true
	if err := json.Unmarshal(b, &f.Value); err != nil {
		return nil
	}
	f.IsString = true
	return nil
}

// Text returns the decoded string value, empty for absent or untyped fields.
func (f Field) Text() string {
	if !f.IsString {
		return ""
	}
	return f.Value
}

// AdminPayload is the request body for creating or updating an admin.
// Field order here is the order violations are reported in.
type AdminPayload struct {
	LastName   Field `json:"last_name"`
	FirstName  Field `json:"first_name"`
	MiddleName Field `json:"middle_name"`
	Email      Field `json:"email"`
}
