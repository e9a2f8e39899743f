package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory, keyed by full object key.
type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = b
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentLength: aws.Int64(int64(len(b))),
		ContentType:   aws.String(f.types[aws.ToString(in.Key)]),
	}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var n int32
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			n++
			break
		}
	}
	return &s3.ListObjectsV2Output{KeyCount: aws.Int32(n)}, nil
}

func TestS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := &S3{Client: fake, Bucket: "b", Prefix: "tours", PublicBaseURL: "https://cdn.test"}

	res, err := s.Put(ctx, "casa/scene-abc.png", strings.NewReader("png"), PutInput{})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/tours/casa/scene-abc.png", res.URL)
	assert.Equal(t, "image/png", fake.types["tours/casa/scene-abc.png"])

	ok, err := s.Exists(ctx, "casa/scene-abc.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "casa/other.png")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.HasPrefix(ctx, "casa/")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasPrefix(ctx, "cas/")
	require.NoError(t, err)
	assert.False(t, ok)

	rc, info, err := s.Get(ctx, "casa/scene-abc.png")
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, int64(3), info.Size)

	_, _, err = s.Get(ctx, "casa/missing.png")
	assert.ErrorIs(t, err, ErrNotExist)
}
