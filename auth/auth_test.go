package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	req := require.New(t)

	// Given a hashed password
	hash, err := HashPassword("Str0ng&Secret#2026")
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	// Then the right password matches and a wrong one does not
	match, err := ComparePassword("Str0ng&Secret#2026", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("Wr0ng&Secret#2026", hash)
	req.NoError(err)
	req.False(match)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	req := require.New(t)

	// Two hashes of the same password must never collide
	first, err := HashPassword("Str0ng&Secret#2026")
	req.NoError(err)
	second, err := HashPassword("Str0ng&Secret#2026")
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-an-encoded-hash")

	req.Error(err)
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	req := require.New(t)

	// Given a signed token
	token, err := GenerateToken("user-42", []string{"user"}, time.Hour)
	req.NoError(err)

	// Then validation recovers the claims
	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal([]string{"user"}, claims.Roles)
	req.Equal("dm-lab", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-42", []string{"user"}, -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)

	req.ErrorIs(err, jwt.ErrTokenExpired)
}

func TestValidateToken_Tampered(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-42", []string{"user"}, time.Hour)
	req.NoError(err)

	_, err = ValidateToken(token + "x")

	req.Error(err)
}

func TestValidateSignup(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		request  SignupRequest
		hasError bool
	}{
		{
			name:     "Valid request",
			request:  SignupRequest{FullName: "Alice Doe", Email: "alice@example.com", Password: "Str0ng&Secret#2026"},
			hasError: false,
		},
		{
			name:     "Too short password",
			request:  SignupRequest{FullName: "Alice Doe", Email: "alice@example.com", Password: "Ab1&"},
			hasError: true,
		},
		{
			name:     "Long but all lowercase",
			request:  SignupRequest{FullName: "Alice Doe", Email: "alice@example.com", Password: "onlylowercaseletters"},
			hasError: true,
		},
		{
			name:     "Missing special character",
			request:  SignupRequest{FullName: "Alice Doe", Email: "alice@example.com", Password: "Str0ngSecret2026"},
			hasError: true,
		},
		{
			name:     "Invalid email",
			request:  SignupRequest{FullName: "Alice Doe", Email: "not-an-email", Password: "Str0ng&Secret#2026"},
			hasError: true,
		},
		{
			name:     "Single letter name",
			request:  SignupRequest{FullName: "A", Email: "alice@example.com", Password: "Str0ng&Secret#2026"},
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.request)
			if tt.hasError {
				req.Error(err)
				return
			}
			req.NoError(err)
		})
	}
}
