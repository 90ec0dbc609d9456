package media_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/media"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

// stubPresigner records the request and returns a canned URL.
type stubPresigner struct {
	lastKey string
}

func (stub *stubPresigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	stub.lastKey = *params.Key
	return &v4.PresignedHTTPRequest{
		URL:    "https://storage.example.com/signed/" + *params.Key,
		Method: "PUT",
	}, nil
}

func TestAllowed(t *testing.T) {
	cases := []struct {
		kind     media.Kind
		filename string
		want     bool
	}{
		{media.KindImage, "cover.png", true},
		{media.KindImage, "COVER.JPG", true},
		{media.KindImage, "clip.mp4", false},
		{media.KindVideo, "clip.mp4", true},
		{media.KindVideo, "cover.png", false},
		{media.KindFile, "handout.pdf", true},
		{media.KindFile, "script.sh", false},
		{media.KindImage, "noextension", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, media.Allowed(tc.kind, tc.filename),
			"%s %s", tc.kind, tc.filename)
	}
}

func TestPresignUpload_KeyShapeAndURLs(t *testing.T) {
	stub := &stubPresigner{}
	service := media.NewPresignService(stub, "manabiya-media", "https://storage.example.com/", slog.New(slog.NewTextHandler(io.Discard, nil)))
	uploader := &sec.Identity{UserID: "user-123", Role: sec.RoleInstructor}

	upload, err := service.PresignUpload(context.Background(), uploader, media.KindImage, "Cover Art.PNG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(upload.Key, "uploads/image/user-123/"))
	assert.True(t, strings.HasSuffix(upload.Key, ".png"))
	assert.Equal(t, stub.lastKey, upload.Key)
	assert.Equal(t, "https://storage.example.com/signed/"+upload.Key, upload.UploadURL)
	assert.Equal(t, "https://storage.example.com/manabiya-media/"+upload.Key, upload.PublicURL)
}

func TestPresignUpload_RejectsDisallowedExtension(t *testing.T) {
	stub := &stubPresigner{}
	service := media.NewPresignService(stub, "manabiya-media", "https://storage.example.com", slog.New(slog.NewTextHandler(io.Discard, nil)))
	uploader := &sec.Identity{UserID: "user-123", Role: sec.RoleInstructor}

	_, err := service.PresignUpload(context.Background(), uploader, media.KindImage, "payload.exe")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = service.PresignUpload(context.Background(), uploader, media.Kind("archive"), "handout.pdf")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Empty(t, stub.lastKey)
}
