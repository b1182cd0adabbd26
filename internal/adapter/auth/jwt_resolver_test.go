package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticketflow/internal/adapter/auth"
	"github.com/srgjo27/ticketflow/internal/adapter/repository/memory"
	"github.com/srgjo27/ticketflow/internal/core/domain"
)

const secret = "jwt-test-secret"

func TestAuthenticate_UsesStoredProfile(t *testing.T) {
	store := memory.NewStore()
	store.SeedUser(domain.UserProfile{UID: "s-1", Role: domain.RoleScanner, VenueID: "v-1", Active: false})
	resolver := auth.NewResolver(secret, "ticketflow", store)

	token, err := auth.SignToken(secret, "ticketflow", "s-1", "s1@example.com", domain.RoleSiteAdmin, "", time.Minute)
	require.NoError(t, err)

	identity, err := resolver.Authenticate(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleScanner, identity.Role)
	assert.Equal(t, "v-1", identity.VenueID)
	assert.False(t, identity.Active)
	assert.Equal(t, "s1@example.com", identity.Email)
}

func TestAuthenticate_FallsBackToClaims(t *testing.T) {
	resolver := auth.NewResolver(secret, "", memory.NewStore())

	token, err := auth.SignToken(secret, "", "u-1", "u1@example.com", "superuser", "", time.Minute)
	require.NoError(t, err)

	identity, err := resolver.Authenticate(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.UID)
	assert.Equal(t, domain.RoleUser, identity.Role)
	assert.True(t, identity.Active)
}

func TestAuthenticate_Rejects(t *testing.T) {
	resolver := auth.NewResolver(secret, "ticketflow", memory.NewStore())

	expired, err := auth.SignToken(secret, "ticketflow", "u-1", "", domain.RoleUser, "", -time.Minute)
	require.NoError(t, err)
	wrongSecret, err := auth.SignToken("other", "ticketflow", "u-1", "", domain.RoleUser, "", time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := auth.SignToken(secret, "someone-else", "u-1", "", domain.RoleUser, "", time.Minute)
	require.NoError(t, err)
	noSubject, err := auth.SignToken(secret, "ticketflow", "", "", domain.RoleUser, "", time.Minute)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", Issuer: "ticketflow"},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"expired":      expired,
		"wrong secret": wrongSecret,
		"wrong issuer": wrongIssuer,
		"no subject":   noSubject,
		"hs512":        hs512,
	} {
		_, err := resolver.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, name)
	}
}

func TestLookup(t *testing.T) {
	store := memory.NewStore()
	store.SeedUser(domain.UserProfile{UID: "s-1", Role: domain.RoleVenueAdmin, VenueID: "v-1", Active: true})
	resolver := auth.NewResolver(secret, "", store)

	identity, err := resolver.Lookup(context.Background(), "s-1")
	require.NoError(t, err)
	assert.True(t, identity.CanScan())

	_, err = resolver.Lookup(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}
