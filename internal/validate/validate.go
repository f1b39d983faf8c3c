// Package validate holds the admin payload field rules. The validator is
// payload-local: it never consults the store or a previous record, and it
// collects every violation in one pass so a client can fix all defects in a
// single round trip.
package validate

import (
	"regexp"
	"strings"

	"github.com/kubhq/admind/internal/model"
)

// Bounds is the allowed length interval for a non-empty middle name,
// inclusive on both ends.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds is used when no interval is configured.
var DefaultBounds = Bounds{Min: 2, Max: 64}

var (
	// Any Unicode letters, nothing else. Digits or whitespace anywhere fail.
	namePattern = regexp.MustCompile(`^\p{L}+$`)

	// Local part per RFC 5322 atext, domain labels with a mandatory TLD so
	// bare hostnames ("fail@smtp") are rejected.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)+$`)
)

// Violations is the ordered list of field rule failures. It implements error
// so the service layer can return it through the normal error path; Error
// renders the single detail string the wire contract requires.
type Violations []string

func (v Violations) Error() string {
	return strings.Join(v, "; ")
}

// Admin checks every field rule against the payload and returns all
// violations found, in declaration order: last_name, first_name,
// middle_name, email. A nil result means the payload is valid.
func Admin(p *model.AdminPayload, b Bounds) Violations {
	var v Violations
	v = checkName(v, "lastName", p.LastName)
	v = checkName(v, "firstName", p.FirstName)
	v = checkMiddleName(v, p.MiddleName, b)
	if !p.Email.IsString || !emailPattern.MatchString(p.Email.Value) {
		v = append(v, "email must be a valid email address")
	}
	return v
}

// checkName enforces the required name rules. A missing, wrong-typed, or
// blank value reports only the blank violation; the character-class rule
// applies once there is a string to inspect.
func checkName(v Violations, field string, f model.Field) Violations {
	switch {
	case !f.IsString || strings.TrimSpace(f.Value) == "":
		return append(v, field+" can't be blank")
	case !namePattern.MatchString(f.Value):
		return append(v, field+" must contain only alphabetic characters")
	}
	return v
}

// checkMiddleName enforces the optional middle name rules. Absent or empty
// passes; a wrong-typed value or a length outside the interval fails.
func checkMiddleName(v Violations, f model.Field, b Bounds) Violations {
	if !f.Present {
		return v
	}
	if !f.IsString {
		return append(v, "middleName must have length in interval")
	}
	if f.Value == "" {
		return v
	}
	if n := len([]rune(f.Value)); n < b.Min || n > b.Max {
		return append(v, "middleName must have length in interval")
	}
	return v
}
