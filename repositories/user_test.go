package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dm-lab/errors"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	// Given a new account
	id, err := repo.CreateUser("Alice Doe", "alice@example.com", "hashed")
	req.NoError(err)
	req.NotEmpty(id)

	// Then both lookup paths resolve the same record
	byEmail, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, byEmail.ID)
	req.Equal("Alice Doe", byEmail.FullName)
	req.Equal("hashed", byEmail.PasswordHash)
	req.Equal([]string{"user"}, byEmail.Roles)

	byID, err := repo.GetUserByID(id)
	req.NoError(err)
	req.Equal(byEmail.Email, byID.Email)
}

func TestUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.CreateUser("Alice Doe", "alice@example.com", "hashed")
	req.NoError(err)

	// When the same email signs up twice
	_, err = repo.CreateUser("Alice Dupe", "alice@example.com", "other")

	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_GetUser_NotFound(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.GetUserByEmail("ghost@example.com")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repo.GetUserByID("nope")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_UpdateProfilePic(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	id, err := repo.CreateUser("Alice Doe", "alice@example.com", "hashed")
	req.NoError(err)

	// When the profile picture is replaced
	updated, err := repo.UpdateProfilePic(id, "https://cdn.example.com/alice.png")
	req.NoError(err)
	req.Equal("https://cdn.example.com/alice.png", updated.ProfilePic)

	// Then both keys carry the new reference
	byEmail, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal("https://cdn.example.com/alice.png", byEmail.ProfilePic)
}

func TestUserRepository_ListUsersExcept(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	aliceID, err := repo.CreateUser("Alice Doe", "alice@example.com", "h1")
	req.NoError(err)
	_, err = repo.CreateUser("Bob Roe", "bob@example.com", "h2")
	req.NoError(err)
	_, err = repo.CreateUser("Carol Foe", "carol@example.com", "h3")
	req.NoError(err)

	// When listing alice's contacts
	users, err := repo.ListUsersExcept(aliceID)

	// Then everyone but alice shows up
	req.NoError(err)
	req.Len(users, 2)
	for _, user := range users {
		req.NotEqual(aliceID, user.ID)
	}
}

func TestUserRepository_DeleteUser(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	id, err := repo.CreateUser("Alice Doe", "alice@example.com", "hashed")
	req.NoError(err)

	req.NoError(repo.DeleteUser(id))

	_, err = repo.GetUserByID(id)
	req.ErrorIs(err, errors.ErrUserNotFound)
	_, err = repo.GetUserByEmail("alice@example.com")
	req.ErrorIs(err, errors.ErrUserNotFound)
}
