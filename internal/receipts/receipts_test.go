package receipts

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"fjacquet/eod-recon/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(data))
	return &s3.PutObjectOutput{}, nil
}

func TestUpload_PublicURL(t *testing.T) {
	fake := &fakeS3{}
	u := NewUploader(fake, "eod-receipts", "https://cdn.example.com/", logging.NewMockLogger())

	url, err := u.Upload(context.Background(), "receipts/r-1/abc-scan.png", "image/png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/receipts/r-1/abc-scan.png", url)

	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "eod-receipts", aws.ToString(fake.inputs[0].Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.inputs[0].ContentType))
	assert.Equal(t, int64(7), aws.ToInt64(fake.inputs[0].ContentLength))
	assert.Equal(t, "PNGDATA", fake.bodies[0])
}

func TestUpload_S3URIWithoutPublicURL(t *testing.T) {
	u := NewUploader(&fakeS3{}, "bucket", "", nil)
	url, err := u.Upload(context.Background(), "k", "", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/k", url)
}

func TestUpload_Errors(t *testing.T) {
	u := NewUploader(&fakeS3{err: errors.New("access denied")}, "bucket", "", nil)
	_, err := u.Upload(context.Background(), "k", "", strings.NewReader("x"))
	assert.ErrorContains(t, err, "access denied")

	_, err = NewUploader(&fakeS3{}, "bucket", "", nil).Upload(context.Background(), "k", "", strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		filename string
		suffix   string
	}{
		{"scan.png", "-scan.png"},
		{"../../etc/passwd", "-passwd"},
		{`C:\Users\me\My Receipt (1).jpg`, "-My_Receipt_1_.jpg"},
		{"", "-receipt"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			key := ObjectKey("r-1", tt.filename)
			assert.True(t, strings.HasPrefix(key, "receipts/r-1/"), key)
			assert.True(t, strings.HasSuffix(key, tt.suffix), key)
		})
	}
	assert.NotEqual(t, ObjectKey("r-1", "a.png"), ObjectKey("r-1", "a.png"))
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), Config{Region: "auto"}, nil)
	assert.Error(t, err)
}
