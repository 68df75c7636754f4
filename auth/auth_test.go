package auth

import (
	"strings"
	"testing"
	"time"

	"dm-relay/errors"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "UnMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice42", "Alice", "ComplexPass123!"}, false},
		{"Username too short", RegisterRequest{"al", "Alice", "ComplexPass123!"}, true},
		{"Username not alphanumeric", RegisterRequest{"alice-42", "Alice", "ComplexPass123!"}, true},
		{"Empty display name", RegisterRequest{"alice42", "", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"alice42", "Alice", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"alice42", "Alice", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"alice42", "Alice", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"alice42", "Alice", "nouppercase123!"}, true},
		{"Password too long (edge case)", RegisterRequest{"alice42", "Alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestRegistrationValidation_Sentinels(t *testing.T) {
	req := require.New(t)

	// A malformed username is a registration problem, not a password one
	err := ValidateRegister(RegisterRequest{"al", "Alice", "ComplexPass123!"})
	req.ErrorIs(err, errors.ErrInvalidRegistration)
	req.NotErrorIs(err, errors.ErrInvalidPassword)

	// A well-formed but weak password reports the complexity sentinel
	err = ValidateRegister(RegisterRequest{"alice42", "Alice", "nodigitsorupper!"})
	req.ErrorIs(err, errors.ErrInvalidPassword)
	req.NotErrorIs(err, errors.ErrInvalidRegistration)
}

func TestGenerateAndValidateToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(7, "Alice", time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal(int64(7), claims.UserID)
	req.Equal("Alice", claims.DisplayName)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(7, "Alice", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
