package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/bookclub/models"
)

func TestAuthRepository(t *testing.T) {
	t.Run("should reject a second account with the same email", func(t *testing.T) {
		req := require.New(t)
		repo := NewAuthRepo(newTestDB(t))
		createUser(t, repo, "Ada", "Lovelace", "ada@example.com")

		req.Error(repo.IsEmailExist("ada@example.com"))
		req.NoError(repo.IsEmailExist("grace@example.com"))

		_, err := repo.CreateUser(&models.User{FirstName: "A", LastName: "L", Email: "ada@example.com"})
		req.Error(err)
	})

	t.Run("should find users by email and id", func(t *testing.T) {
		req := require.New(t)
		repo := NewAuthRepo(newTestDB(t))
		u := createUser(t, repo, "Ada", "Lovelace", "ada@example.com")

		byEmail, err := repo.FindUserByEmail("ada@example.com")
		req.NoError(err)
		req.Equal(u.ID, byEmail.ID)

		byID, err := repo.FindUserByID(u.ID)
		req.NoError(err)
		req.Equal("Ada", byID.FirstName)

		_, err = repo.FindUserByID(uuid.New())
		req.True(errors.Is(err, ErrNotFound))
	})

	t.Run("should return profiles only for existing users", func(t *testing.T) {
		req := require.New(t)
		repo := NewAuthRepo(newTestDB(t))
		u := createUser(t, repo, "Ada", "Lovelace", "ada@example.com")
		ghost := uuid.New()

		profiles, err := repo.FindProfilesByIDs([]uuid.UUID{u.ID, ghost})
		req.NoError(err)
		req.Len(profiles, 1)
		req.Equal("Lovelace", profiles[u.ID].LastName)
		_, ok := profiles[ghost]
		req.False(ok)

		empty, err := repo.FindProfilesByIDs(nil)
		req.NoError(err)
		req.Empty(empty)
	})

	t.Run("should search by name and username", func(t *testing.T) {
		req := require.New(t)
		repo := NewAuthRepo(newTestDB(t))
		createUser(t, repo, "Ada", "Lovelace", "ada@example.com")
		g := createUser(t, repo, "Grace", "Hopper", "grace@example.com")
		req.NoError(repo.UpdateUsername(g.ID, "amazinggrace"))

		found, err := repo.SearchUsers("LOVE")
		req.NoError(err)
		req.Len(found, 1)
		req.Equal("Ada", found[0].FirstName)

		found, err = repo.SearchUsers("amazing")
		req.NoError(err)
		req.Len(found, 1)
		req.Equal(g.ID, found[0].ID)

		all, err := repo.GetAllUsers()
		req.NoError(err)
		req.Len(all, 2)
	})

	t.Run("should update profile columns", func(t *testing.T) {
		req := require.New(t)
		repo := NewAuthRepo(newTestDB(t))
		u := createUser(t, repo, "Ada", "Lovelace", "ada@example.com")

		req.NoError(repo.UpdateUserImage(u.ID, "uploads/a.png", "uploads/a_thumb.png"))
		req.NoError(repo.UpdateDeviceToken(u.ID, "device-1"))

		got, err := repo.FindUserByID(u.ID)
		req.NoError(err)
		req.NotNil(got.Image)
		req.Equal("uploads/a.png", *got.Image)
		req.Equal("uploads/a_thumb.png", got.ThumbNailURL)
		req.Equal("device-1", got.DeviceToken)

		err = repo.UpdateUsername(uuid.New(), "nobody")
		req.True(errors.Is(err, ErrNotFound))
	})

	t.Run("should report blacklisted tokens", func(t *testing.T) {
		req := require.New(t)
		repo := NewAuthRepo(newTestDB(t))

		req.False(repo.TokenInBlacklist("abc"))
		req.NoError(repo.AddToBlackList(&models.Blacklist{Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}))
		req.True(repo.TokenInBlacklist("abc"))
		req.False(repo.TokenInBlacklist("abd"))
	})
}
