package progress_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/robalobadob/scratcher/internal/progress"
	"github.com/robalobadob/scratcher/internal/store"
)

// flakyStore wraps a memory store and fails every call while broken is set.
type flakyStore struct {
	store.Store
	broken bool
}

var errDown = errors.New("disk on fire")

func (f *flakyStore) Load(ctx context.Context, key string) ([]byte, error) {
	if f.broken {
		return nil, errDown
	}
	return f.Store.Load(ctx, key)
}

func (f *flakyStore) Save(ctx context.Context, key string, data []byte) error {
	if f.broken {
		return errDown
	}
	return f.Store.Save(ctx, key, data)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.broken {
		return errDown
	}
	return f.Store.Delete(ctx, key)
}

func TestGetOrCreateCreatesAndPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.NewMemoryStore()
	tr := progress.NewTracker(st, "")

	rec := tr.GetOrCreate(ctx, "dG9rZW4", 5)
	if rec.Token != "dG9rZW4" || rec.TotalWords != 5 || len(rec.CollectedWords) != 0 || rec.IsComplete {
		t.Fatalf("GetOrCreate() = %+v", rec)
	}
	data, err := st.Load(ctx, progress.KeyPrefix+"dG9rZW4")
	if err != nil {
		t.Fatalf("stored record missing: %v", err)
	}
	want := `{"token":"dG9rZW4","collectedWords":[],"totalWords":5,"isComplete":false}`
	if string(data) != want {
		t.Fatalf("stored = %s, want %s", data, want)
	}
}

func TestAddWordCompletesAtTotal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := progress.NewTracker(store.NewMemoryStore(), "p1")

	rec := tr.GetOrCreate(ctx, "tok", 3)
	rec = tr.AddWord(ctx, rec, "Will")
	rec = tr.AddWord(ctx, rec, "you")
	if rec.IsComplete {
		t.Fatal("complete after 2 of 3 words")
	}
	before := rec
	rec = tr.AddWord(ctx, rec, "marry")
	if !rec.IsComplete {
		t.Fatalf("not complete at total: %+v", rec)
	}
	if len(before.CollectedWords) != 2 {
		t.Fatalf("AddWord mutated caller record: %v", before.CollectedWords)
	}

	again := tr.GetOrCreate(ctx, "tok", 3)
	if !slices.Equal(again.CollectedWords, []string{"Will", "you", "marry"}) || !again.IsComplete {
		t.Fatalf("reloaded = %+v", again)
	}

	after := tr.AddWord(ctx, again, "extra")
	if len(after.CollectedWords) != 3 {
		t.Fatalf("complete record grew: %v", after.CollectedWords)
	}
}

func TestAddWordIgnoresDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := progress.NewTracker(store.NewMemoryStore(), "")

	rec := tr.GetOrCreate(ctx, "tok", 4)
	rec = tr.AddWord(ctx, rec, "hi")
	rec = tr.AddWord(ctx, rec, "hi")
	rec = tr.AddWord(ctx, rec, "")
	if !slices.Equal(rec.CollectedWords, []string{"hi"}) {
		t.Fatalf("CollectedWords = %v", rec.CollectedWords)
	}
	if rec.Remaining() != 3 {
		t.Fatalf("Remaining() = %d", rec.Remaining())
	}
}

func TestGetOrCreateUpdatesTotal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := progress.NewTracker(store.NewMemoryStore(), "")

	rec := tr.GetOrCreate(ctx, "tok", 4)
	tr.AddWord(ctx, rec, "a")

	got := tr.GetOrCreate(ctx, "tok", 6)
	if got.TotalWords != 6 || !slices.Equal(got.CollectedWords, []string{"a"}) {
		t.Fatalf("GetOrCreate() = %+v", got)
	}
}

func TestResetStartsOver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := progress.NewTracker(store.NewMemoryStore(), "")

	rec := tr.GetOrCreate(ctx, "tok", 3)
	tr.AddWord(ctx, rec, "a")
	tr.Reset(ctx, "tok")
	tr.Reset(ctx, "never-created")

	got := tr.GetOrCreate(ctx, "tok", 3)
	if len(got.CollectedWords) != 0 || got.IsComplete {
		t.Fatalf("after Reset = %+v", got)
	}
}

func TestCorruptRecordTreatedAsMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := map[string]string{
		"not json":      `{oops`,
		"words missing": `{"token":"tok","totalWords":3}`,
		"words wrong":   `{"collectedWords":"hello","totalWords":3}`,
		"negative":      `{"collectedWords":[],"totalWords":-2}`,
	}
	for name, raw := range cases {
		st := store.NewMemoryStore()
		if err := st.Save(ctx, progress.KeyPrefix+"tok", []byte(raw)); err != nil {
			t.Fatal(err)
		}
		got := progress.NewTracker(st, "").GetOrCreate(ctx, "tok", 3)
		if len(got.CollectedWords) != 0 || got.TotalWords != 3 {
			t.Fatalf("%s: GetOrCreate() = %+v", name, got)
		}
	}
}

func TestLegacyRecordShape(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.NewMemoryStore()
	raw := `{"encodedMessage":"tok","collectedWords":["a","a","b"],"totalWords":3,"isComplete":false}`
	if err := st.Save(ctx, progress.KeyPrefix+"tok", []byte(raw)); err != nil {
		t.Fatal(err)
	}

	got := progress.NewTracker(st, "").GetOrCreate(ctx, "tok", 3)
	if got.Token != "tok" || !slices.Equal(got.CollectedWords, []string{"a", "b"}) {
		t.Fatalf("GetOrCreate() = %+v", got)
	}
}

func TestStorageFailureFallsBackToMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := &flakyStore{Store: store.NewMemoryStore(), broken: true}
	tr := progress.NewTracker(st, "")

	rec := tr.GetOrCreate(ctx, "tok", 2)
	if !errors.Is(tr.Err(), progress.ErrStorageUnavailable) {
		t.Fatalf("Err() = %v, want ErrStorageUnavailable", tr.Err())
	}
	rec = tr.AddWord(ctx, rec, "a")

	got := tr.GetOrCreate(ctx, "tok", 2)
	if !slices.Equal(got.CollectedWords, []string{"a"}) {
		t.Fatalf("in-memory progress lost: %+v", got)
	}

	st.broken = false
	rec = tr.AddWord(ctx, got, "b")
	if !rec.IsComplete {
		t.Fatalf("AddWord() = %+v", rec)
	}
	if tr.Err() != nil {
		t.Fatalf("Err() after recovery = %v", tr.Err())
	}
	if _, err := st.Store.Load(ctx, progress.KeyPrefix+"tok"); err != nil {
		t.Fatalf("record not persisted after recovery: %v", err)
	}
}

func TestFailedResetStillStartsOver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := &flakyStore{Store: store.NewMemoryStore()}
	tr := progress.NewTracker(st, "")

	rec := tr.GetOrCreate(ctx, "tok", 3)
	tr.AddWord(ctx, rec, "a")

	st.broken = true
	tr.Reset(ctx, "tok")
	st.broken = false

	got := tr.GetOrCreate(ctx, "tok", 3)
	if len(got.CollectedWords) != 0 {
		t.Fatalf("reset record resurfaced: %+v", got)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.NewMemoryStore()
	alice := progress.NewTracker(st, "alice")
	bob := progress.NewTracker(st, "bob")

	rec := alice.GetOrCreate(ctx, "tok", 3)
	alice.AddWord(ctx, rec, "a")

	if got := bob.GetOrCreate(ctx, "tok", 3); len(got.CollectedWords) != 0 {
		t.Fatalf("bob sees alice's progress: %+v", got)
	}
	if alice.Key("tok") == bob.Key("tok") {
		t.Fatal("owners share a key")
	}
}

func TestRecordForAnotherTokenIsDiscarded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.NewMemoryStore()
	tr := progress.NewTracker(st, "")

	other := `{"token":"BBBB","collectedWords":["two"],"totalWords":3,"isComplete":false}`
	if err := st.Save(ctx, tr.Key("AAAA"), []byte(other)); err != nil {
		t.Fatal(err)
	}
	if err := st.Save(ctx, tr.Key("BBBB"), []byte(other)); err != nil {
		t.Fatal(err)
	}

	rec := tr.GetOrCreate(ctx, "AAAA", 3)
	if rec.Token != "AAAA" || len(rec.CollectedWords) != 0 {
		t.Fatalf("GetOrCreate() = %+v, want a fresh record for AAAA", rec)
	}
	rec = tr.AddWord(ctx, rec, "one")

	again := tr.GetOrCreate(ctx, "AAAA", 3)
	if !slices.Equal(again.CollectedWords, []string{"one"}) {
		t.Fatalf("reload AAAA = %v, want [one]", again.CollectedWords)
	}
	data, err := st.Load(ctx, tr.Key("BBBB"))
	if err != nil || string(data) != other {
		t.Fatalf("BBBB record changed: %s, %v", data, err)
	}
}
