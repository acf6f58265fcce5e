package store_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/robalobadob/scratcher/internal/store"
)

// fakeDynamo keeps items in memory keyed by the "key" attribute.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(m map[string]types.AttributeValue) string {
	if s, ok := m["key"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func openStores(t *testing.T) map[string]store.Store {
	t.Helper()
	dir := t.TempDir()

	jsonStore, err := store.NewJSONStore(filepath.Join(dir, "progress.json"))
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	sqliteStore, err := store.NewSQLiteStore(filepath.Join(dir, "progress.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]store.Store{
		store.EngineMemory:   store.NewMemoryStore(),
		store.EngineJSON:     jsonStore,
		store.EngineSQLite:   sqliteStore,
		store.EngineDynamoDB: store.NewDynamoStoreWithClient(newFakeDynamo(), "progress"),
	}
}

func TestStoresBasicFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, st := range openStores(t) {
		if _, err := st.Load(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("%s: Load(missing) error = %v, want ErrNotFound", name, err)
		}

		if err := st.Save(ctx, "k", []byte(`{"v":1}`)); err != nil {
			t.Fatalf("%s: Save() error = %v", name, err)
		}
		if err := st.Save(ctx, "k", []byte(`{"v":2}`)); err != nil {
			t.Fatalf("%s: Save() overwrite error = %v", name, err)
		}
		got, err := st.Load(ctx, "k")
		if err != nil {
			t.Fatalf("%s: Load() error = %v", name, err)
		}
		if string(got) != `{"v":2}` {
			t.Fatalf("%s: Load() = %s", name, got)
		}

		if err := st.Delete(ctx, "k"); err != nil {
			t.Fatalf("%s: Delete() error = %v", name, err)
		}
		if err := st.Delete(ctx, "k"); err != nil {
			t.Fatalf("%s: second Delete() error = %v", name, err)
		}
		if _, err := st.Load(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("%s: Load() after Delete error = %v", name, err)
		}
	}
}

func TestJSONStoreSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "data", "progress.json")
	a, err := store.NewJSONStore(path)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	if err := a.Save(ctx, "k", []byte(`{"collectedWords":["hi"]}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	b, err := store.NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got, err := b.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != `{"collectedWords":["hi"]}` {
		t.Fatalf("Load() = %s", got)
	}
}

func TestJSONStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.NewJSONStore(path); err == nil {
		t.Fatal("expected error for corrupt store file")
	}
}

func TestOpenByEngine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st, err := store.Open(ctx, store.Options{Engine: "SQLite", Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	if c, ok := st.(io.Closer); ok {
		_ = c.Close()
	}

	if _, err := store.Open(ctx, store.Options{Engine: "redis"}); err == nil {
		t.Fatal("expected error for unknown engine")
	}
	if _, err := store.Open(ctx, store.Options{Engine: store.EngineMemory}); err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
}
