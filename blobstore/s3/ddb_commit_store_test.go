package s3

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colgo/blobstore"
)

// mockDDBClient is an in-memory DynamoDB fake with real conditional-put
// semantics, so the commit race is exercised for real.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemKey(baseURI, version string) string {
	return baseURI + ":" + version
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Item["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := itemKey(baseURI, version)

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseURI := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == baseURI {
			items = append(items, item)
		}
	}

	// The sort key is numeric, so order numerically and descending like
	// DynamoDB does with ScanIndexForward=false.
	slices.SortFunc(items, func(a, b map[string]types.AttributeValue) int {
		av, _ := strconv.ParseUint(a["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		bv, _ := strconv.ParseUint(b["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return cmp.Compare(bv, av)
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *mockDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseURI := params.Key["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Key["version"].(*types.AttributeValueMemberN).Value

	if item, ok := m.items[itemKey(baseURI, version)]; ok {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Key["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Key["version"].(*types.AttributeValueMemberN).Value
	delete(m.items, itemKey(baseURI, version))
	return &dynamodb.DeleteItemOutput{}, nil
}

func newTestCommitStore(ddb *mockDDBClient, baseURI string, optFns ...func(o *DDBCommitStoreOptions)) *DDBCommitStore {
	return NewDDBCommitStore(blobstore.NewMemoryStore(), ddb, "colgo-commits", baseURI, optFns...)
}

func readPointer(t *testing.T, store *DDBCommitStore, name string) string {
	t.Helper()

	blob, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	defer func() { _ = blob.Close() }()

	buf := make([]byte, blob.Size())
	n, err := blob.ReadAt(context.Background(), buf, 0)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestDDBCommitStore_FirstCommit(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestCommitStore(ddb, "s3://test-bucket/test")

	err := store.Put(ctx, "CURRENT", []byte("MANIFEST-000001.json"))
	require.NoError(t, err)

	assert.Equal(t, "MANIFEST-000001.json", readPointer(t, store, "CURRENT"))
}

func TestDDBCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestCommitStore(ddb, "s3://test-bucket/test")

	// Past version 9 a lexicographic comparison would order versions
	// wrong, so go to double digits.
	for i := 1; i <= 12; i++ {
		err := store.Put(ctx, "CURRENT", fmt.Appendf(nil, "MANIFEST-%06d.json", i))
		require.NoError(t, err)
	}

	assert.Equal(t, "MANIFEST-000012.json", readPointer(t, store, "CURRENT"))
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestCommitStore(ddb, "s3://test-bucket/test")

	require.NoError(t, store.Put(ctx, "CURRENT", []byte("MANIFEST-000001.json")))

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0

	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := store.Put(ctx, "CURRENT", fmt.Appendf(nil, "MANIFEST-%06d.json", i+2))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentCommit):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()
	assert.Positive(t, successes, "at least one writer should succeed")
	assert.Equal(t, 5, successes+conflicts)
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	ddb := newMockDDBClient()
	store := newTestCommitStore(ddb, "s3://test-bucket/test")

	_, err := store.Open(context.Background(), "CURRENT")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()

	store1 := newTestCommitStore(ddb, "s3://bucket-a/path")
	store2 := newTestCommitStore(ddb, "s3://bucket-b/path")

	require.NoError(t, store1.Put(ctx, "CURRENT", []byte("MANIFEST-A.json")))
	require.NoError(t, store2.Put(ctx, "CURRENT", []byte("MANIFEST-B.json")))

	assert.Equal(t, "MANIFEST-A.json", readPointer(t, store1, "CURRENT"))
	assert.Equal(t, "MANIFEST-B.json", readPointer(t, store2, "CURRENT"))
}

func TestDDBCommitStore_PassThrough(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestCommitStore(ddb, "s3://test-bucket/test")

	// Anything but the pointer goes straight to the inner store.
	require.NoError(t, store.Put(ctx, "events.id.col", []byte("payload")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"events.id.col"}, names)

	blob, err := store.Open(ctx, "events.id.col")
	require.NoError(t, err)
	assert.Equal(t, int64(7), blob.Size())
	require.NoError(t, blob.Close())

	require.NoError(t, store.Delete(ctx, "events.id.col"))
	_, err = store.Open(ctx, "events.id.col")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_PointerName(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestCommitStore(ddb, "s3://test-bucket/test", func(o *DDBCommitStoreOptions) {
		o.PointerName = "HEAD"
	})

	require.NoError(t, store.Put(ctx, "HEAD", []byte("MANIFEST-000001.json")))
	assert.Equal(t, "MANIFEST-000001.json", readPointer(t, store, "HEAD"))

	// CURRENT is an ordinary blob under a renamed pointer.
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("plain")))
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENT"}, names)
}
