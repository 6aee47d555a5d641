package wizard

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estuary/models"
	"estuary/services/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fileOf(name string, body []byte, size int64) *storage.File {
	return &storage.File{Name: name, Size: size, Body: bytes.NewReader(body)}
}

func TestUploadCoverImageTooLarge(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, nil)

	_, err := f.svc.UploadCoverImage(ctx, owner, sess.ID, fileOf("big.png", pngHeader, 15<<20))
	assert.ErrorIs(t, err, storage.ErrFileTooLarge)
	assert.Zero(t, f.store.calls)
	assert.Equal(t, models.ToastError, f.notifier.last().Level)

	stored, _ := f.svc.Get(ctx, owner, sess.ID)
	assert.Nil(t, stored.Draft.CoverImageURL)
}

func TestUploadCoverImage(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, nil)

	sess, err := f.svc.UploadCoverImage(ctx, owner, sess.ID, fileOf("cover.png", pngHeader, int64(len(pngHeader))))
	require.NoError(t, err)
	require.NotNil(t, sess.Draft.CoverImageURL)
	assert.Equal(t, "https://cdn.test/cover.png", *sess.Draft.CoverImageURL)
	assert.Equal(t, 1, f.store.calls)
	assert.Equal(t, models.ToastSuccess, f.notifier.last().Level)
}

func TestUploadResourceChecksMetadataFirst(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, nil)
	doc := []byte("Session notes\nBreathe in, breathe out.\n")

	_, err := f.svc.UploadResource(ctx, owner, sess.ID, ResourceInput{ResourceType: models.ResourceDocument},
		fileOf("notes.txt", doc, int64(len(doc))))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Zero(t, f.store.calls)

	_, err = f.svc.UploadResource(ctx, owner, sess.ID, ResourceInput{Title: "Video", ResourceType: models.ResourceVideo},
		fileOf("notes.txt", doc, int64(len(doc))))
	assert.ErrorIs(t, err, storage.ErrUnsupportedType)
	assert.Zero(t, f.store.calls)

	sess, err = f.svc.UploadResource(ctx, owner, sess.ID, ResourceInput{Title: "Notes", ResourceType: models.ResourceDocument},
		fileOf("notes.txt", doc, int64(len(doc))))
	require.NoError(t, err)
	require.Len(t, sess.Draft.Resources, 1)
	r := sess.Draft.Resources[0]
	assert.Equal(t, models.AccessCustomers, r.AccessLevel)
	assert.Equal(t, models.AttachmentIncluded, r.AttachmentLevel)
	require.NotNil(t, r.MediaID)
	assert.Equal(t, "m-notes.txt", *r.MediaID)

	link := "https://example.com/guide"
	sess, err = f.svc.AddLinkResource(ctx, owner, sess.ID, ResourceInput{Title: "Guide", ResourceType: models.ResourceLink, ExternalURL: &link})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Draft.Resources[1].Order)

	assert.Empty(t, validatePolish(&sess.Draft))
}
