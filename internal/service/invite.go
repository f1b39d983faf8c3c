package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kubhq/admind/internal/mailer"
	"github.com/kubhq/admind/internal/model"
)

// ErrInvalidInvite is returned by Verify for unparseable, mistyped, or
// expired invite tokens.
var ErrInvalidInvite = errors.New("invalid invite token")

// InviteSigner issues the signed activation tokens embedded in invite mail.
// The token is consumed by the account activation front-end, not by admind
// itself; resending an invite reissues a fresh token.
type InviteSigner struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
}

// NewInviteSigner creates a signer. baseURL is the public activation page
// the mailed link points at; ttl bounds how long a mailed link stays valid.
func NewInviteSigner(secret, baseURL string, ttl time.Duration) *InviteSigner {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &InviteSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
	}
}

type inviteClaims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Token creates a new signed invite token for the given admin.
func (g *InviteSigner) Token(admin *model.Admin) (string, error) {
	now := time.Now()
	claims := inviteClaims{
		AdminID: admin.ID,
		Email:   admin.Email,
		Purpose: "invite",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
			Issuer:    "admind",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Verify parses an invite token and returns the admin id and email it was
// issued for.
func (g *InviteSigner) Verify(tokenStr string) (adminID int64, email string, err error) {
	claims := &inviteClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid || claims.Purpose != "invite" {
		return 0, "", ErrInvalidInvite
	}
	return claims.AdminID, claims.Email, nil
}

// Compose renders the invite message for the admin, activation link included.
func (g *InviteSigner) Compose(admin *model.Admin) (mailer.Invite, error) {
	token, err := g.Token(admin)
	if err != nil {
		return mailer.Invite{}, fmt.Errorf("sign invite token: %w", err)
	}
	link := g.baseURL + "/activate?token=" + url.QueryEscape(token)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s %s,\n\n", admin.FirstName, admin.LastName)
	b.WriteString("An administrator account has been created for you. ")
	b.WriteString("Follow the link below to activate it:\n\n")
	fmt.Fprintf(&b, "    %s\n\n", link)
	fmt.Fprintf(&b, "The link expires in %s. If it has expired, ask a super admin to resend your invite.\n", g.ttl)

	return mailer.Invite{
		To:      admin.Email,
		Subject: "Your administrator account",
		Body:    b.String(),
	}, nil
}
