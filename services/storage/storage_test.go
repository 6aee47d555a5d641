package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"estuary/config"
	"estuary/models"
	"estuary/services/estuary"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fileOf(name string, data []byte) *File {
	return &File{Name: name, Size: int64(len(data)), Body: bytes.NewReader(data)}
}

type fakeMediaAPI struct {
	calls      []string
	uploadURL  string
	targetErr  error
	confirmErr error
}

func (f *fakeMediaAPI) RequestUploadURL(_ context.Context, req estuary.UploadURLRequest) (*models.UploadTarget, error) {
	f.calls = append(f.calls, "target:"+req.ContentType)
	if f.targetErr != nil {
		return nil, f.targetErr
	}
	return &models.UploadTarget{MediaID: "media-1", UploadURL: f.uploadURL + "/bucket/obj?sig=abc"}, nil
}

func (f *fakeMediaAPI) ConfirmUpload(_ context.Context, mediaID string) (*models.UploadedFile, error) {
	f.calls = append(f.calls, "confirm:"+mediaID)
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &models.UploadedFile{MediaID: mediaID}, nil
}

func TestValidateSizeLimits(t *testing.T) {
	limits := DefaultLimits()
	big := &File{Name: "big.png", Size: 15 * megabyte, Body: bytes.NewReader(pngHeader)}
	_, err := Validate(big, models.UploadImage, "", limits)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	resource := &File{Name: "talk.mp4", Size: 101 * megabyte, Body: bytes.NewReader(nil)}
	_, err = Validate(resource, models.UploadResource, models.ResourceVideo, limits)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestValidateContentTypes(t *testing.T) {
	limits := DefaultLimits()
	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	text := []byte("plain notes for the session\n")

	cases := []struct {
		name string
		data []byte
		kind models.UploadKind
		rt   models.ResourceType
		err  error
	}{
		{"png cover", pngHeader, models.UploadImage, "", nil},
		{"pdf cover", pdf, models.UploadImage, "", ErrUnsupportedType},
		{"pdf document", pdf, models.UploadResource, models.ResourceDocument, nil},
		{"text document", text, models.UploadResource, models.ResourceDocument, nil},
		{"png as video", pngHeader, models.UploadResource, models.ResourceVideo, ErrUnsupportedType},
		{"png as audio", pngHeader, models.UploadResource, models.ResourceAudio, ErrUnsupportedType},
		{"anything as other", pngHeader, models.UploadResource, models.ResourceOther, nil},
		{"file for link", text, models.UploadResource, models.ResourceLink, ErrLinkHasNoFile},
		{"empty", nil, models.UploadResource, models.ResourceOther, ErrEmptyFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := fileOf("upload", tc.data)
			_, err := Validate(f, tc.kind, tc.rt, limits)
			if tc.err == nil {
				require.NoError(t, err)
				pos, _ := f.Body.Seek(0, io.SeekCurrent)
				assert.Zero(t, pos)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestUploaderRejectsLargeImageBeforeAnyNetworkCall(t *testing.T) {
	api := &fakeMediaAPI{}
	up := NewUploader(NewPresignedStorage(api, nil, zap.NewNop()), DefaultLimits(), zap.NewNop())

	data := append(append([]byte{}, pngHeader...), make([]byte, 15*megabyte)...)
	_, err := up.Upload(context.Background(), fileOf("cover.png", data), models.UploadImage, "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, api.calls)
}

func TestPresignedHandshakeOrder(t *testing.T) {
	api := &fakeMediaAPI{}
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.calls = append(api.calls, "put:"+r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "sig=abc", r.URL.RawQuery)
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	api.uploadURL = srv.URL

	up := NewUploader(NewPresignedStorage(api, srv.Client(), zap.NewNop()), DefaultLimits(), zap.NewNop())
	out, err := up.Upload(context.Background(), fileOf("cover.png", pngHeader), models.UploadImage, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"target:image/png", "put:image/png", "confirm:media-1"}, api.calls)
	assert.Equal(t, pngHeader, received)
	assert.Equal(t, srv.URL+"/bucket/obj", out.URL)
	assert.Equal(t, int64(len(pngHeader)), out.Size)
}

func TestPresignedTransferFailureSkipsConfirm(t *testing.T) {
	api := &fakeMediaAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.calls = append(api.calls, "put")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	api.uploadURL = srv.URL

	store := NewPresignedStorage(api, srv.Client(), zap.NewNop())
	_, err := store.Upload(context.Background(), fileOf("a.png", pngHeader), "image/png", models.UploadImage)
	assert.ErrorIs(t, err, ErrUploadTransfer)
	assert.Equal(t, []string{"target:image/png", "put"}, api.calls)
}

func TestPresignedTargetAndConfirmFailures(t *testing.T) {
	api := &fakeMediaAPI{targetErr: errors.New("503")}
	store := NewPresignedStorage(api, nil, zap.NewNop())
	_, err := store.Upload(context.Background(), fileOf("a.png", pngHeader), "image/png", models.UploadImage)
	assert.ErrorIs(t, err, ErrUploadTarget)
	assert.Len(t, api.calls, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	api = &fakeMediaAPI{uploadURL: srv.URL, confirmErr: errors.New("gone")}
	store = NewPresignedStorage(api, srv.Client(), zap.NewNop())
	_, err = store.Upload(context.Background(), fileOf("a.png", pngHeader), "image/png", models.UploadImage)
	assert.ErrorIs(t, err, ErrUploadConfirm)
}

func TestLimitsFromConfig(t *testing.T) {
	l := LimitsFromConfig(configWith(5, 0))
	assert.Equal(t, int64(5*megabyte), l.MaxImageBytes)
	assert.Equal(t, int64(100*megabyte), l.MaxResourceBytes)
}

func configWith(imageMB, resourceMB int64) config.Config {
	return config.Config{MaxImageUploadMB: imageMB, MaxResourceUploadMB: resourceMB}
}
