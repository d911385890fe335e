package cloudinary

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadAPI struct {
	uploadParams  []uploader.UploadParams
	destroyParams []uploader.DestroyParams
	result        *uploader.UploadResult
	err           error
}

func (f *fakeUploadAPI) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploadParams = append(f.uploadParams, params)
	return f.result, f.err
}

func (f *fakeUploadAPI) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyParams = append(f.destroyParams, params)
	return &uploader.DestroyResult{}, f.err
}

func TestUpload_ReturnsSecureURL(t *testing.T) {
	api := &fakeUploadAPI{result: &uploader.UploadResult{
		SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/orders/receipts/r1.png",
		URL:       "http://res.cloudinary.com/demo/image/upload/v1/orders/receipts/r1.png",
	}}
	store := NewImageStoreWithAPI(api)

	url, err := store.Upload(context.Background(), "data:image/png;base64,AAAA", "orders/receipts")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/orders/receipts/r1.png", url)
	require.Len(t, api.uploadParams, 1)
	assert.Equal(t, "orders/receipts", api.uploadParams[0].Folder)
	assert.Equal(t, "auto", api.uploadParams[0].ResourceType)
}

func TestUpload_Failures(t *testing.T) {
	_, err := NewImageStoreWithAPI(&fakeUploadAPI{err: errors.New("quota")}).
		Upload(context.Background(), "data:image/png;base64,AAAA", "products")
	assert.ErrorContains(t, err, "quota")

	_, err = NewImageStoreWithAPI(&fakeUploadAPI{result: &uploader.UploadResult{}}).
		Upload(context.Background(), "data:image/png;base64,AAAA", "products")
	assert.Error(t, err)
}

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345678/products/abc123.jpg", "products/abc123"},
		{"https://res.cloudinary.com/demo/image/upload/c_fill,w_200/v17/products/abc.png", "products/abc"},
		{"https://res.cloudinary.com/demo/image/upload/products/noversion.webp", "products/noversion"},
	}
	for _, tt := range tests {
		got, err := PublicIDFromURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}

	_, err := PublicIDFromURL("https://example.com/images/abc.jpg")
	assert.Error(t, err)
}

func TestDelete_DestroysByPublicID(t *testing.T) {
	api := &fakeUploadAPI{}
	store := NewImageStoreWithAPI(api)

	err := store.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/v1/products/p9.jpg")
	require.NoError(t, err)
	require.Len(t, api.destroyParams, 1)
	assert.Equal(t, "products/p9", api.destroyParams[0].PublicID)
}
