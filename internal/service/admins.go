// Package service owns the admin lifecycle orchestration: payload
// validation, store operations, and invite dispatch. Handlers translate the
// typed errors coming out of here into the wire contract; nothing in this
// package knows about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kubhq/admind/internal/mailer"
	"github.com/kubhq/admind/internal/model"
	"github.com/kubhq/admind/internal/store"
	"github.com/kubhq/admind/internal/validate"
)

// AdminService runs each operation through the same pipeline: validate the
// payload, apply the store operation, dispatch mail where the operation
// calls for it. A stage failure stops the pipeline.
type AdminService struct {
	store   *store.Store
	mailer  mailer.Mailer
	invites *InviteSigner
	bounds  validate.Bounds
	logger  *slog.Logger
}

// NewAdminService wires the service. bounds with a zero Max falls back to
// validate.DefaultBounds.
func NewAdminService(st *store.Store, m mailer.Mailer, invites *InviteSigner, bounds validate.Bounds, logger *slog.Logger) *AdminService {
	if bounds.Max == 0 {
		bounds = validate.DefaultBounds
	}
	return &AdminService{
		store:   st,
		mailer:  m,
		invites: invites,
		bounds:  bounds,
		logger:  logger,
	}
}

// Create validates the payload, persists a new admin, and dispatches the
// invite. The invite is best effort on this path: a delivery failure is
// logged and never rolls back the created record, since the resend endpoint
// exists to retry it.
func (s *AdminService) Create(ctx context.Context, p *model.AdminPayload) (*model.Admin, error) {
	if v := validate.Admin(p, s.bounds); len(v) > 0 {
		return nil, v
	}

	admin := &model.Admin{
		LastName:   p.LastName.Text(),
		FirstName:  p.FirstName.Text(),
		MiddleName: p.MiddleName.Text(),
		Email:      p.Email.Text(),
	}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	if err := s.sendInvite(ctx, admin); err != nil {
		s.logger.Warn("invite delivery failed on create, record kept",
			"admin_id", admin.ID, "error", err)
	}
	return admin, nil
}

// List returns all live admins.
func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	return s.store.ListAdmins(ctx)
}

// Get returns the live admin with the given id.
func (s *AdminService) Get(ctx context.Context, id int64) (*model.Admin, error) {
	return s.store.GetAdmin(ctx, id)
}

// Update validates the payload, then replaces the mutable fields of the
// admin with the given id. Validation runs before the existence check, so a
// defective payload reports its violations even for a missing id.
func (s *AdminService) Update(ctx context.Context, id int64, p *model.AdminPayload) (*model.Admin, error) {
	if v := validate.Admin(p, s.bounds); len(v) > 0 {
		return nil, v
	}

	admin, err := s.store.GetAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	admin.LastName = p.LastName.Text()
	admin.FirstName = p.FirstName.Text()
	admin.MiddleName = p.MiddleName.Text()
	admin.Email = p.Email.Text()

	if err := s.store.UpdateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Delete removes the admin with the given id. After a successful delete the
// id yields not-found everywhere; the email is free for reuse.
func (s *AdminService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteAdmin(ctx, id)
}

// ResendInvite reissues and dispatches the invite for a live admin. A
// transient delivery failure surfaces as mailer.ErrUnavailable with the
// stored record untouched.
func (s *AdminService) ResendInvite(ctx context.Context, id int64) (*model.Admin, error) {
	admin, err := s.store.GetAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sendInvite(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) sendInvite(ctx context.Context, admin *model.Admin) error {
	inv, err := s.invites.Compose(admin)
	if err != nil {
		return fmt.Errorf("compose invite: %w", err)
	}
	return s.mailer.Send(ctx, inv)
}
