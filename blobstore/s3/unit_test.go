package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colgo/blobstore"
)

// MockS3Client mocks the Client interface for unit tests.
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func (m *MockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.CreateMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.UploadPartOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.CompleteMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *MockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.AbortMultipartUploadOutput)
	return out, args.Error(1)
}

func newTestStore(client Client) *Store {
	return NewStore(client, "test-bucket", func(o *StoreOptions) {
		o.Prefix = "prefix"
	})
}

func TestStore_Open(t *testing.T) {
	mockClient := new(MockS3Client)
	store := newTestStore(mockClient)

	t.Run("NotFound", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return aws.ToString(input.Bucket) == "test-bucket" && aws.ToString(input.Key) == "prefix/foo"
		})).Return(nil, &types.NotFound{}).Once()

		_, err := store.Open(context.Background(), "foo")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return aws.ToString(input.Bucket) == "test-bucket" && aws.ToString(input.Key) == "prefix/bar"
		})).Return(&s3.HeadObjectOutput{
			ContentLength: aws.Int64(100),
		}, nil).Once()

		blob, err := store.Open(context.Background(), "bar")
		require.NoError(t, err)
		assert.Equal(t, int64(100), blob.Size())
	})
}

func TestStore_Put(t *testing.T) {
	t.Run("WithChecksum", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := newTestStore(mockClient)

		mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
			return aws.ToString(input.Key) == "prefix/obj" &&
				aws.ToInt64(input.ContentLength) == 5 &&
				aws.ToString(input.ChecksumCRC32C) == computeCRC32C([]byte("hello"))
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		err := store.Put(context.Background(), "obj", []byte("hello"))
		assert.NoError(t, err)
	})

	t.Run("ChecksumDisabled", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewStore(mockClient, "test-bucket", func(o *StoreOptions) {
			o.Upload.EnableChecksum = false
		})

		mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
			return aws.ToString(input.Key) == "obj" && input.ChecksumCRC32C == nil
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		err := store.Put(context.Background(), "obj", []byte("hello"))
		assert.NoError(t, err)
	})
}

func TestStore_Delete(t *testing.T) {
	mockClient := new(MockS3Client)
	store := newTestStore(mockClient)

	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return aws.ToString(input.Bucket) == "test-bucket" && aws.ToString(input.Key) == "prefix/del"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	err := store.Delete(context.Background(), "del")
	assert.NoError(t, err)
}

func TestStore_List(t *testing.T) {
	mockClient := new(MockS3Client)
	store := newTestStore(mockClient)

	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return aws.ToString(input.Bucket) == "test-bucket" && aws.ToString(input.Prefix) == "prefix"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("prefix/file1")},
			{Key: aws.String("prefix/dir/file2")},
		},
	}, nil).Once()

	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/file2", "file1"}, keys)
}

func TestStore_List_Pagination(t *testing.T) {
	mockClient := new(MockS3Client)
	store := newTestStore(mockClient)

	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token"),
		Contents:              []types.Object{{Key: aws.String("prefix/1")}},
	}, nil).Once()

	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return aws.ToString(input.ContinuationToken) == "token"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("prefix/2")}},
	}, nil).Once()

	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, keys)
}

func TestBlob_ReadAt(t *testing.T) {
	mockClient := new(MockS3Client)
	blob := &s3Blob{
		client: mockClient,
		bucket: "b",
		key:    "k",
		size:   10,
	}

	t.Run("Full", func(t *testing.T) {
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return aws.ToString(input.Range) == "bytes=0-4"
		})).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("hello")),
		}, nil).Once()

		buf := make([]byte, 5)
		n, err := blob.ReadAt(context.Background(), buf, 0)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "hello", string(buf))
	})

	t.Run("ShortAtEnd", func(t *testing.T) {
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return aws.ToString(input.Range) == "bytes=6-9"
		})).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("wxyz")),
		}, nil).Once()

		buf := make([]byte, 8)
		n, err := blob.ReadAt(context.Background(), buf, 6)
		assert.Equal(t, 4, n)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("PastEnd", func(t *testing.T) {
		buf := make([]byte, 4)
		n, err := blob.ReadAt(context.Background(), buf, 10)
		assert.Zero(t, n)
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestBlob_ReadRange(t *testing.T) {
	mockClient := new(MockS3Client)
	blob := &s3Blob{
		client: mockClient,
		bucket: "b",
		key:    "k",
		size:   10,
	}

	t.Run("Window", func(t *testing.T) {
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return aws.ToString(input.Range) == "bytes=2-6"
		})).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("llo w")),
		}, nil).Once()

		r, err := blob.ReadRange(context.Background(), 2, 5)
		require.NoError(t, err)
		defer func() { _ = r.Close() }()

		buf, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "llo w", string(buf))
	})

	t.Run("ToEnd", func(t *testing.T) {
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return aws.ToString(input.Range) == "bytes=2-9"
		})).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("llo worl")),
		}, nil).Once()

		r, err := blob.ReadRange(context.Background(), 2, -1)
		require.NoError(t, err)
		defer func() { _ = r.Close() }()

		buf, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Len(t, buf, 8)
	})

	t.Run("PastEnd", func(t *testing.T) {
		r, err := blob.ReadRange(context.Background(), 10, 5)
		require.NoError(t, err)
		defer func() { _ = r.Close() }()

		buf, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Empty(t, buf)
	})
}

func TestStore_Create(t *testing.T) {
	mockClient := new(MockS3Client)
	store := newTestStore(mockClient)

	// The upload manager may hand PutObject a buffered reader rather than
	// the pipe itself; consuming the body lets the upload finish either way.
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return aws.ToString(input.Bucket) == "test-bucket" && aws.ToString(input.Key) == "prefix/new"
	})).Run(func(args mock.Arguments) {
		input := args.Get(1).(*s3.PutObjectInput)
		_, _ = io.ReadAll(input.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	wb, err := store.Create(context.Background(), "new")
	require.NoError(t, err)

	_, err = wb.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, wb.Sync())

	assert.NoError(t, wb.Close())

	// Close is idempotent and reports the original result.
	assert.NoError(t, wb.Close())
}

func TestStore_Create_Abort(t *testing.T) {
	mockClient := new(MockS3Client)
	store := newTestStore(mockClient)

	wb, err := store.Create(context.Background(), "aborted")
	require.NoError(t, err)

	_, err = wb.Write([]byte("partial"))
	require.NoError(t, err)

	sb, ok := wb.(*streamingWritableBlob)
	require.True(t, ok)
	assert.NoError(t, sb.Abort())

	assert.ErrorIs(t, wb.Close(), errUploadAborted)

	_, err = wb.Write([]byte("more"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestExpressStore_PutIfNotExists(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewExpressStore(mockClient, "bucket--use1-az4--x-s3")

		mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
			return aws.ToString(input.IfNoneMatch) == "*"
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		err := store.PutIfNotExists(context.Background(), "CURRENT", []byte("MANIFEST-000001.json"))
		assert.NoError(t, err)
	})

	t.Run("AlreadyExists", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewExpressStore(mockClient, "bucket--use1-az4--x-s3")

		mockClient.On("PutObject", mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "object exists"}).Once()

		err := store.PutIfNotExists(context.Background(), "CURRENT", []byte("MANIFEST-000002.json"))
		assert.ErrorIs(t, err, ErrConflict)
	})
}
