package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/colgo/blobstore"
)

// Compile time check to ensure DDBCommitStore satisfies the blobstore.Store interface.
var _ blobstore.Store = (*DDBCommitStore)(nil)

// ErrConcurrentCommit is returned when another writer committed a new
// version between reading the pointer and writing it.
var ErrConcurrentCommit = errors.New("s3: concurrent commit detected")

// DDBClient is the subset of the DynamoDB API the commit store uses.
// *dynamodb.Client implements it.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DDBCommitStoreOptions configures a DDBCommitStore.
type DDBCommitStoreOptions struct {
	// PointerName is the blob name whose reads and writes go through
	// DynamoDB instead of the inner store. Defaults to "CURRENT", the
	// name the manifest store uses for its version pointer.
	PointerName string
}

// DDBCommitStore wraps a blob store with a DynamoDB commit log so that
// pointer updates become atomic compare-and-swap operations. Plain S3
// offers no conditional write on standard buckets, which makes a bare
// "write CURRENT" racy under concurrent writers; routing the pointer
// through a conditional DynamoDB put closes that window. All other
// blobs pass through to the inner store untouched.
//
// Table schema:
//   - Partition key: base_uri (string), one dataset per value
//   - Sort key: version (number), monotonically increasing
//   - Attribute: manifest_path (string), the pointer content
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name colgo-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	inner     blobstore.Store
	ddbClient DDBClient
	tableName string
	baseURI   string
	pointer   string
}

// NewDDBCommitStore wraps inner with a DynamoDB commit log. baseURI
// partitions the table, so "s3://bucket/prefix" style URIs keep
// datasets isolated from each other.
func NewDDBCommitStore(inner blobstore.Store, ddbClient DDBClient, tableName, baseURI string, optFns ...func(o *DDBCommitStoreOptions)) *DDBCommitStore {
	opts := DDBCommitStoreOptions{
		PointerName: "CURRENT",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &DDBCommitStore{
		inner:     inner,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
		pointer:   opts.PointerName,
	}
}

// Open returns a blob for the named object. Opening the pointer reads
// the latest committed version from DynamoDB.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name == s.pointer {
		version, manifestPath, err := s.latestVersion(ctx)
		if err != nil {
			return nil, err
		}
		if version == 0 {
			return nil, blobstore.ErrNotFound
		}
		return &pointerBlob{content: []byte(manifestPath)}, nil
	}
	return s.inner.Open(ctx, name)
}

// Put writes a blob. Writing the pointer commits data as the next
// version; ErrConcurrentCommit reports a lost race.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name == s.pointer {
		return s.commitVersion(ctx, string(bytes.TrimSpace(data)))
	}
	return s.inner.Put(ctx, name, data)
}

func (s *DDBCommitStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// latestVersion returns the newest committed version and its pointer
// content, or version 0 when nothing has been committed yet.
func (s *DDBCommitStore) latestVersion(ctx context.Context) (uint64, string, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("s3: query commit log: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("s3: commit log item missing version attribute")
	}
	pathAttr, ok := item["manifest_path"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("s3: commit log item missing manifest_path attribute")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("s3: parse commit version: %w", err)
	}

	return version, pathAttr.Value, nil
}

// commitVersion writes manifestPath as the next version. The conditional
// put fails if another writer claimed that version first.
func (s *DDBCommitStore) commitVersion(ctx context.Context, manifestPath string) error {
	currentVersion, _, err := s.latestVersion(ctx)
	if err != nil {
		return err
	}

	newVersion := currentVersion + 1

	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: strconv.FormatUint(newVersion, 10)},
			"manifest_path": &types.AttributeValueMemberS{Value: manifestPath},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentCommit
		}
		return fmt.Errorf("s3: commit version %d: %w", newVersion, err)
	}

	return nil
}

// pointerBlob serves the pointer content resolved from DynamoDB.
type pointerBlob struct {
	content []byte
}

func (b *pointerBlob) Close() error {
	return nil
}

func (b *pointerBlob) Size() int64 {
	return int64(len(b.content))
}

func (b *pointerBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("s3: negative offset %d", off)
	}
	if off >= int64(len(b.content)) {
		return 0, io.EOF
	}
	n := copy(p, b.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *pointerBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= int64(len(b.content)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	if length < 0 {
		length = int64(len(b.content)) - off
	}
	end := min(off+length, int64(len(b.content)))
	return io.NopCloser(bytes.NewReader(b.content[off:end])), nil
}
