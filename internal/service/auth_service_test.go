package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/pokehire/internal/auth"
	"github.com/vedran77/pokehire/internal/domain"
)

func TestSignup_CreatesUserAndProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Signup(ctx, SignupInput{
		Email:       "  Ash@Example.com ",
		Password:    "pikachu123",
		FullName:    "Ash Ketchum",
		ProfileType: "client",
	})
	require.NoError(t, err)

	assert.Equal(t, "ash@example.com", resp.User.Email)
	assert.NotEqual(t, "pikachu123", resp.User.PasswordHash)
	assert.Equal(t, resp.User.ID, resp.Profile.UserID)
	assert.Equal(t, int64(100), resp.Profile.Balance)
	assert.Equal(t, domain.ProfileClient, resp.Profile.ProfileType)

	userID, err := env.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	stored, err := env.store.Profiles().GetByUserID(ctx, resp.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(100), stored.Balance)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "misty@example.com", domain.ProfileContractor)

	_, err := env.auth.Signup(context.Background(), SignupInput{
		Email: "MISTY@example.com", Password: "starmie123", FullName: "Misty", ProfileType: "client",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	created := env.signup(t, "brock@example.com", domain.ProfileContractor)
	ctx := context.Background()

	resp, err := env.auth.Login(ctx, LoginInput{Email: "brock@example.com", Password: "pikachu123"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, resp.User.ID)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, domain.ProfileContractor, resp.Profile.ProfileType)

	userID, err := env.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, userID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "brock@example.com", domain.ProfileContractor)
	ctx := context.Background()

	for _, in := range []LoginInput{
		{Email: "brock@example.com", Password: "wrong-password"},
		{Email: "brock@example.com", Password: ""},
		{Email: "nobody@example.com", Password: "pikachu123"},
	} {
		resp, err := env.auth.Login(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidCreds)
		assert.Nil(t, resp)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	created := env.signup(t, "gary@example.com", domain.ProfileClient)

	me, err := env.auth.Me(context.Background(), created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "gary@example.com", me.Email)
	assert.Equal(t, created.Profile.ID, me.Profile.ID)

	_, err = env.auth.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginAndMe_MissingProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("pikachu123")
	require.NoError(t, err)
	user := &domain.User{ID: uuid.New(), Email: "orphan@example.com", PasswordHash: hash}
	require.NoError(t, env.store.Users().Create(ctx, user))

	_, err = env.auth.Login(ctx, LoginInput{Email: "orphan@example.com", Password: "pikachu123"})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = env.auth.Me(ctx, user.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
