package aws

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func pngDataURL(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestS3ImageStore_UploadWritesDecodedObject(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3ImageStore(fake, "chimes", "uploads/", "", "")

	url, err := store.Upload(context.Background(), pngDataURL("receipt-bytes"), "orders/receipts")
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	key := sdkaws.ToString(fake.puts[0].Key)
	assert.True(t, strings.HasPrefix(key, "uploads/orders/receipts/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "image/png", sdkaws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, "receipt-bytes", string(fake.bodies[0]))
	assert.Equal(t, "https://chimes.s3.amazonaws.com/"+key, url)
}

func TestS3ImageStore_UploadRejectsMalformedDataURL(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3ImageStore(fake, "chimes", "", "", "")

	_, err := store.Upload(context.Background(), "data:image/png;base64", "orders/receipts")
	assert.Error(t, err)
	assert.Empty(t, fake.puts)
}

func TestS3ImageStore_UploadPropagatesPutFailure(t *testing.T) {
	store := NewS3ImageStore(&fakeS3{putErr: errors.New("boom")}, "chimes", "", "", "")

	_, err := store.Upload(context.Background(), pngDataURL("x"), "products")
	assert.ErrorContains(t, err, "boom")
}

func TestS3ImageStore_PublicURLVariants(t *testing.T) {
	cdn := NewS3ImageStore(&fakeS3{}, "chimes", "", "", "cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/a/b.png", cdn.publicURL("a/b.png"))

	local := NewS3ImageStore(&fakeS3{}, "chimes", "", "http://localstack:4566/", "")
	assert.Equal(t, "http://localstack:4566/chimes/a/b.png", local.publicURL("a/b.png"))
}

func TestS3ImageStore_DeleteOwnAndForeignURLs(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3ImageStore(fake, "chimes", "", "", "")

	err := store.Delete(context.Background(), "https://chimes.s3.amazonaws.com/products/p1.jpg")
	require.NoError(t, err)
	require.Len(t, fake.deletes, 1)
	assert.Equal(t, "products/p1.jpg", sdkaws.ToString(fake.deletes[0].Key))

	err = store.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/v1/products/p1.jpg")
	assert.ErrorIs(t, err, ErrForeignURL)
	assert.Len(t, fake.deletes, 1)
}
