package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kubhq/admind/internal/mailer"
	"github.com/kubhq/admind/internal/model"
	"github.com/kubhq/admind/internal/store"
	"github.com/kubhq/admind/internal/validate"
)

// recordingMailer captures sent invites and optionally fails every send.
type recordingMailer struct {
	sent []mailer.Invite
	fail bool
}

func (m *recordingMailer) Send(_ context.Context, inv mailer.Invite) error {
	if m.fail {
		return mailer.ErrUnavailable
	}
	m.sent = append(m.sent, inv)
	return nil
}

func newTestService(t *testing.T, m mailer.Mailer) (*AdminService, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Options{})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	signer := NewInviteSigner("test-invite-secret", "https://admin.kub.example", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAdminService(st, m, signer, validate.Bounds{}, logger), st
}

func validPayload(t *testing.T, email string) *model.AdminPayload {
	t.Helper()
	return payloadFrom(t, `{"last_name":"Doe","first_name":"John","middle_name":"Edward","email":"`+email+`"}`)
}

func payloadFrom(t *testing.T, raw string) *model.AdminPayload {
	t.Helper()
	var p model.AdminPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return &p
}

func TestCreateSendsInvite(t *testing.T) {
	m := &recordingMailer{}
	svc, _ := newTestService(t, m)

	admin, err := svc.Create(context.Background(), validPayload(t, "john.doe@example.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if admin.ID <= 0 {
		t.Errorf("id = %d, want positive", admin.ID)
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent %d invites, want 1", len(m.sent))
	}
	inv := m.sent[0]
	if inv.To != "john.doe@example.com" {
		t.Errorf("invite to %q", inv.To)
	}
	if !strings.Contains(inv.Body, "activate?token=") {
		t.Errorf("invite body missing activation link: %q", inv.Body)
	}
}

func TestCreateKeepsRecordWhenInviteFails(t *testing.T) {
	m := &recordingMailer{fail: true}
	svc, st := newTestService(t, m)

	admin, err := svc.Create(context.Background(), validPayload(t, "john.doe@example.com"))
	if err != nil {
		t.Fatalf("Create must not fail on invite delivery: %v", err)
	}
	if _, err := st.GetAdmin(context.Background(), admin.ID); err != nil {
		t.Errorf("record missing after failed invite: %v", err)
	}
}

func TestCreateValidationShortCircuitsStore(t *testing.T) {
	m := &recordingMailer{}
	svc, st := newTestService(t, m)

	p := payloadFrom(t, `{"last_name":"Doe","first_name":"John123","email":"nope"}`)
	_, err := svc.Create(context.Background(), p)

	var v validate.Violations
	if !errors.As(err, &v) {
		t.Fatalf("Create = %v, want Violations", err)
	}
	if len(v) != 2 {
		t.Errorf("violations = %q, want 2 entries", v)
	}
	if n, _ := st.CountAdmins(context.Background()); n != 0 {
		t.Errorf("store has %d admins after rejected create", n)
	}
	if len(m.sent) != 0 {
		t.Error("invite sent for rejected create")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, &recordingMailer{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, validPayload(t, "dup@example.com")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, validPayload(t, "dup@example.com"))
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("second create = %v, want ErrEmailTaken", err)
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	svc, _ := newTestService(t, &recordingMailer{})
	ctx := context.Background()

	admin, err := svc.Create(ctx, validPayload(t, "john.doe@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p := payloadFrom(t, `{"last_name":"Smith","first_name":"Alice","middle_name":"","email":"alice.smith@example.com"}`)
	updated, err := svc.Update(ctx, admin.ID, p)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != admin.ID {
		t.Errorf("id changed on update: %d -> %d", admin.ID, updated.ID)
	}
	if updated.LastName != "Smith" || updated.MiddleName != "" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestUpdateValidationWinsOverNotFound(t *testing.T) {
	svc, _ := newTestService(t, &recordingMailer{})

	p := payloadFrom(t, `{"last_name":"Smith","first_name":"Alice123","email":"alice@example.com"}`)
	_, err := svc.Update(context.Background(), 999999, p)

	var v validate.Violations
	if !errors.As(err, &v) {
		t.Fatalf("Update = %v, want Violations before not-found", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t, &recordingMailer{})
	p := payloadFrom(t, `{"last_name":"Smith","first_name":"Alice","email":"alice@example.com"}`)
	_, err := svc.Update(context.Background(), 999999, p)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Update = %v, want ErrNotFound", err)
	}
}

func TestResendInvite(t *testing.T) {
	m := &recordingMailer{}
	svc, _ := newTestService(t, m)
	ctx := context.Background()

	admin, err := svc.Create(ctx, validPayload(t, "john.doe@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m.sent = nil

	got, err := svc.ResendInvite(ctx, admin.ID)
	if err != nil {
		t.Fatalf("ResendInvite: %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("resend returned id %d, want %d", got.ID, admin.ID)
	}
	if len(m.sent) != 1 {
		t.Errorf("sent %d invites on resend, want 1", len(m.sent))
	}
}

func TestResendInviteTransientFailureLeavesRecord(t *testing.T) {
	m := &recordingMailer{}
	svc, st := newTestService(t, m)
	ctx := context.Background()

	admin, err := svc.Create(ctx, validPayload(t, "john.doe@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := st.GetAdmin(ctx, admin.ID)

	m.fail = true
	if _, err := svc.ResendInvite(ctx, admin.ID); !errors.Is(err, mailer.ErrUnavailable) {
		t.Fatalf("ResendInvite = %v, want ErrUnavailable", err)
	}

	after, _ := st.GetAdmin(ctx, admin.ID)
	if *after != *before {
		t.Errorf("record mutated by failed resend: %+v != %+v", after, before)
	}

	// A later retry with a healthy dispatcher succeeds.
	m.fail = false
	if _, err := svc.ResendInvite(ctx, admin.ID); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
}

func TestResendInviteNotFound(t *testing.T) {
	svc, _ := newTestService(t, &recordingMailer{})
	if _, err := svc.ResendInvite(context.Background(), 999999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("ResendInvite = %v, want ErrNotFound", err)
	}
}

func TestInviteTokenRoundTrip(t *testing.T) {
	signer := NewInviteSigner("test-invite-secret", "https://admin.kub.example/", time.Hour)
	admin := &model.Admin{ID: 42, Email: "john.doe@example.com", FirstName: "John", LastName: "Doe"}

	token, err := signer.Token(admin)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	id, email, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != 42 || email != "john.doe@example.com" {
		t.Errorf("Verify = (%d, %q)", id, email)
	}
}

func TestInviteTokenWrongSecret(t *testing.T) {
	signer := NewInviteSigner("secret-a", "https://admin.kub.example", time.Hour)
	other := NewInviteSigner("secret-b", "https://admin.kub.example", time.Hour)

	token, err := signer.Token(&model.Admin{ID: 1, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if _, _, err := other.Verify(token); !errors.Is(err, ErrInvalidInvite) {
		t.Fatalf("Verify = %v, want ErrInvalidInvite", err)
	}
}

func TestComposeLinksBaseURL(t *testing.T) {
	signer := NewInviteSigner("s", "https://admin.kub.example/", time.Hour)
	inv, err := signer.Compose(&model.Admin{ID: 1, Email: "a@example.com", FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(inv.Body, "https://admin.kub.example/activate?token=") {
		t.Errorf("body = %q, want single-slash activation link", inv.Body)
	}
}
