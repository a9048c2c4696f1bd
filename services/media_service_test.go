package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/bookclub/db"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/models"
	"github.com/techagentng/bookclub/storage"
)

func fileHeader(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaService(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T) (MediaService, db.AuthRepository, uuid.UUID) {
		g := newTestDB(t)
		repo := db.NewAuthRepo(g)
		user, err := repo.CreateUser(&models.User{FirstName: "Ada", LastName: "L", Email: "ada@example.com"})
		require.NoError(t, err)
		store, err := storage.NewLocal(t.TempDir(), "/uploads")
		require.NoError(t, err)
		return NewMediaService(store, repo, nopLogger), repo, user.ID
	}

	t.Run("should store a picture and its thumbnail", func(t *testing.T) {
		req := require.New(t)
		service, repo, userID := setup(t)

		res, err := service.UploadProfilePicture(ctx, userID, fileHeader(t, "me.png", pngBytes(t, 400, 300)))
		req.NoError(err)
		req.True(strings.HasPrefix(res.ImageURL, "/uploads/profiles/"+userID.String()))
		req.True(strings.HasSuffix(res.ThumbnailURL, "_thumb.jpg"))

		user, err := repo.FindUserByID(userID)
		req.NoError(err)
		req.Equal(res.ImageURL, *user.Image)
		req.Equal(res.ThumbnailURL, user.ThumbNailURL)
	})

	t.Run("should reject files that are not images", func(t *testing.T) {
		service, _, userID := setup(t)
		_, err := service.UploadProfilePicture(ctx, userID, fileHeader(t, "me.png", []byte("plain text, not a picture")))
		require.Equal(t, 400, errs.StatusOf(err))
	})

	t.Run("should clear the picture", func(t *testing.T) {
		req := require.New(t)
		service, repo, userID := setup(t)
		_, err := service.UploadProfilePicture(ctx, userID, fileHeader(t, "me.png", pngBytes(t, 64, 64)))
		req.NoError(err)

		req.NoError(service.RemoveProfilePicture(ctx, userID))
		user, err := repo.FindUserByID(userID)
		req.NoError(err)
		req.Nil(user.Image)
		req.Empty(user.ThumbNailURL)

		req.Equal(404, errs.StatusOf(service.RemoveProfilePicture(ctx, uuid.New())))
	})
}
