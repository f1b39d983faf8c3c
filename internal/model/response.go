package model

// ErrorResponse is the envelope for every non-2xx response. The detail field
// carries either a fixed string ("User exists") or the joined list of field
// violations.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
