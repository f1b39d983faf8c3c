package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kubhq/admind/internal/model"
)

// writeJSON serializes v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDetail writes the standard error envelope.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Detail: detail})
}

// readJSON decodes the request body into v. The body is closed regardless of
// the outcome.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// adminID applies the id ladder to the {adminID} path parameter: a value
// that does not parse as an integer is malformed (400), an integer outside
// the positive domain is unprocessable (422). Whether a well-formed id
// exists is the store's call, not ours. On failure the error response has
// already been written and ok is false.
func adminID(w http.ResponseWriter, r *http.Request) (id int64, ok bool) {
	raw := chi.URLParam(r, "adminID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	if id <= 0 {
		writeDetail(w, http.StatusUnprocessableEntity, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
