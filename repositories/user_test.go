package repositories

import (
	"context"
	"log/slog"
	"testing"

	"dm-relay/domain"
	"dm-relay/errors"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"
)

func openTestUserRepository(t *testing.T) *UserRepository {
	t.Helper()
	req := require.New(t)

	db := openTestDB(t)
	blugeCfg := bluge.DefaultConfig(t.TempDir())
	blugeWriter, err := bluge.OpenWriter(blugeCfg)
	req.NoError(err)
	t.Cleanup(func() { _ = blugeWriter.Close() })

	repo, err := NewUserRepository(db, blugeWriter, slog.Default())
	req.NoError(err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func Test_CreateUser_And_Lookup(t *testing.T) {
	req := require.New(t)
	repo := openTestUserRepository(t)

	created, err := repo.CreateUser("alice42", "Alice", "$argon2id$fake")
	req.NoError(err)
	req.NotZero(created.ID)

	byName, err := repo.GetByUsername("alice42")
	req.NoError(err)
	req.Equal(created, byName)

	byID, err := repo.GetByID(domain.UserID(created.ID))
	req.NoError(err)
	req.Equal(created, byID)
}

func Test_CreateUser_Rejects_Duplicate_Username(t *testing.T) {
	req := require.New(t)
	repo := openTestUserRepository(t)

	_, err := repo.CreateUser("alice42", "Alice", "hash1")
	req.NoError(err)

	_, err = repo.CreateUser("alice42", "Another Alice", "hash2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Lookup_Unknown_User(t *testing.T) {
	req := require.New(t)
	repo := openTestUserRepository(t)

	_, err := repo.GetByUsername("nobody")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repo.GetByID(999)
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_Search_Finds_By_Username_Prefix_And_Excludes_Caller(t *testing.T) {
	req := require.New(t)
	repo := openTestUserRepository(t)

	alice, err := repo.CreateUser("alice42", "Alice", "hash")
	req.NoError(err)
	alicia, err := repo.CreateUser("alicia", "Alicia", "hash")
	req.NoError(err)
	_, err = repo.CreateUser("bob", "Bob", "hash")
	req.NoError(err)

	profiles, err := repo.Search(context.Background(), "alic", domain.UserID(alice.ID), 10)
	req.NoError(err)
	req.Len(profiles, 1)
	req.Equal(domain.UserID(alicia.ID), profiles[0].ID)
	req.Equal("alicia", profiles[0].Username)
}

func Test_Search_Empty_Term_Returns_Nothing(t *testing.T) {
	req := require.New(t)
	repo := openTestUserRepository(t)

	_, err := repo.CreateUser("alice42", "Alice", "hash")
	req.NoError(err)

	profiles, err := repo.Search(context.Background(), "   ", 0, 10)
	req.NoError(err)
	req.Empty(profiles)
}
