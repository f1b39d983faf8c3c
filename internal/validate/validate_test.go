package validate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kubhq/admind/internal/model"
)

func payload(t *testing.T, raw string) *model.AdminPayload {
	t.Helper()
	var p model.AdminPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return &p
}

func TestAdminValid(t *testing.T) {
	p := payload(t, `{"last_name":"Doe","first_name":"John","middle_name":"Edward","email":"john.doe@example.com"}`)
	if v := Admin(p, DefaultBounds); v != nil {
		t.Fatalf("expected no violations, got %q", v.Error())
	}
}

func TestAdminValidWithoutMiddleName(t *testing.T) {
	for _, raw := range []string{
		`{"last_name":"Doe","first_name":"John","email":"john.doe@example.com"}`,
		`{"last_name":"Doe","first_name":"John","middle_name":"","email":"john.doe@example.com"}`,
	} {
		if v := Admin(payload(t, raw), DefaultBounds); v != nil {
			t.Errorf("payload %s: expected no violations, got %q", raw, v.Error())
		}
	}
}

func TestAdminViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "missing first name",
			raw:  `{"last_name":"Doe","middle_name":"Edward","email":"john.doe@example.com"}`,
			want: []string{"firstName can't be blank"},
		},
		{
			name: "blank last name",
			raw:  `{"last_name":"  ","first_name":"John","email":"john.doe@example.com"}`,
			want: []string{"lastName can't be blank"},
		},
		{
			name: "digits in first name",
			raw:  `{"last_name":"Doe","first_name":"John123","email":"john.doe@example.com"}`,
			want: []string{"firstName must contain only alphabetic characters"},
		},
		{
			name: "bad email",
			raw:  `{"last_name":"Doe","first_name":"John","email":"invalid-email"}`,
			want: []string{"email must be a valid email address"},
		},
		{
			name: "email without tld",
			raw:  `{"last_name":"Doe","first_name":"John","email":"fail@smtp"}`,
			want: []string{"email must be a valid email address"},
		},
		{
			name: "middle name too short",
			raw:  `{"last_name":"Doe","first_name":"John","middle_name":"E","email":"john.doe@example.com"}`,
			want: []string{"middleName must have length in interval"},
		},
		{
			name: "middle name too long",
			raw:  `{"last_name":"Doe","first_name":"John","middle_name":"` + strings.Repeat("E", 65) + `","email":"john.doe@example.com"}`,
			want: []string{"middleName must have length in interval"},
		},
		{
			name: "wrong type email with bad middle name",
			raw:  `{"last_name":"Smith","first_name":"Alice","middle_name":"E","email":12345}`,
			want: []string{"middleName must have length in interval", "email must be a valid email address"},
		},
		{
			name: "everything wrong at once",
			raw:  `{"last_name":"Doe9","first_name":"John123","middle_name":"E","email":"nope"}`,
			want: []string{
				"lastName must contain only alphabetic characters",
				"firstName must contain only alphabetic characters",
				"middleName must have length in interval",
				"email must be a valid email address",
			},
		},
		{
			name: "empty payload",
			raw:  `{}`,
			want: []string{
				"lastName can't be blank",
				"firstName can't be blank",
				"email must be a valid email address",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Admin(payload(t, tt.raw), DefaultBounds)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d violations %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("violation %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestViolationsErrorJoinsInOrder(t *testing.T) {
	p := payload(t, `{"last_name":"Doe","first_name":"John123","middle_name":"E","email":"nope"}`)
	got := Admin(p, DefaultBounds).Error()
	want := "firstName must contain only alphabetic characters; middleName must have length in interval; email must be a valid email address"
	if got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestAdminUnicodeNames(t *testing.T) {
	p := payload(t, `{"last_name":"Müller","first_name":"Анна","email":"anna@example.com"}`)
	if v := Admin(p, DefaultBounds); v != nil {
		t.Fatalf("expected unicode letters to pass, got %q", v.Error())
	}
}

func TestAdminCustomBounds(t *testing.T) {
	p := payload(t, `{"last_name":"Doe","first_name":"John","middle_name":"Edward","email":"j@example.com"}`)
	if v := Admin(p, Bounds{Min: 2, Max: 5}); len(v) != 1 || v[0] != "middleName must have length in interval" {
		t.Fatalf("expected middle name interval violation, got %q", v)
	}
}
