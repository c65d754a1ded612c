package s3

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    map[string][]byte
	deletes [][]string
	failKey string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	var keys []string
	out := &s3.DeleteObjectsOutput{}
	for _, o := range in.Delete.Objects {
		keys = append(keys, aws.ToString(o.Key))
		if aws.ToString(o.Key) == f.failKey {
			out.Errors = append(out.Errors, types.Error{Key: o.Key, Message: aws.String("AccessDenied")})
		}
	}
	f.deletes = append(f.deletes, keys)
	return out, nil
}

func TestArchivePutAndDelete(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}}
	a := newArchive(fake, "resumes-bucket")
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "resumes/u1/x-cv.pdf", []byte("%PDF"), "application/pdf"))
	assert.Equal(t, []byte("%PDF"), fake.puts["resumes/u1/x-cv.pdf"])

	require.NoError(t, a.Delete(ctx, "resumes/u1/x-cv.pdf", "resumes/u1/y-cv.pdf"))
	assert.Equal(t, [][]string{{"resumes/u1/x-cv.pdf", "resumes/u1/y-cv.pdf"}}, fake.deletes)

	require.NoError(t, a.Delete(ctx))
	assert.Len(t, fake.deletes, 1)
}

func TestArchiveDeleteReportsPerKeyErrors(t *testing.T) {
	fake := &fakeS3{puts: map[string][]byte{}, failKey: "k2"}
	err := newArchive(fake, "b").Delete(context.Background(), "k1", "k2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestNewArchiveRequiresBucket(t *testing.T) {
	_, err := NewArchive(context.Background(), Options{})
	assert.Error(t, err)
}
