package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

type Claims struct {
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	VenueID string `json:"venue_id,omitempty"`
	jwt.RegisteredClaims
}

// Resolver verifies HS256 bearer tokens. A stored profile overrides the
// token claims.
type Resolver struct {
	secret []byte
	issuer string
	users  ports.UserRepository
}

func NewResolver(secret, issuer string, users ports.UserRepository) *Resolver {
	return &Resolver{secret: []byte(secret), issuer: issuer, users: users}
}

func (r *Resolver) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated.WithMessage("invalid or expired token")
	}

	profile, err := r.users.GetUser(ctx, claims.Subject)
	if errors.Is(err, ports.ErrNotFound) {
		role := domain.Role(claims.Role)
		if !role.Valid() {
			role = domain.RoleUser
		}

		return &domain.Identity{
			UID:     claims.Subject,
			Email:   claims.Email,
			Role:    role,
			VenueID: claims.VenueID,
			Active:  true,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	identity := profile.Identity()
	if identity.Email == "" {
		identity.Email = claims.Email
	}

	return identity, nil
}

func (r *Resolver) Lookup(ctx context.Context, uid string) (*domain.Identity, error) {
	profile, err := r.users.GetUser(ctx, uid)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, domain.ErrPermissionDenied.WithMessage("unknown user %s", uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	return profile.Identity(), nil
}

func SignToken(secret, issuer, uid, email string, role domain.Role, venueID string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		Email:   email,
		Role:    string(role),
		VenueID: venueID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
