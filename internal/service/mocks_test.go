package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"basegraph.app/siemd/internal/model"
	"basegraph.app/siemd/internal/service"
	"basegraph.app/siemd/internal/store"
)

type mockEventStore struct {
	insertBatchFn    func(ctx context.Context, events []model.Event) error
	getByIDFn        func(ctx context.Context, id int64) (*model.Event, error)
	listFn           func(ctx context.Context, filter model.EventFilter, cursor *model.Cursor, limit int32) ([]model.EventSummary, error)
	listEventTypesFn func(ctx context.Context, app *string) ([]string, error)
}

func (m *mockEventStore) InsertBatch(ctx context.Context, events []model.Event) error {
	if m.insertBatchFn != nil {
		return m.insertBatchFn(ctx, events)
	}
	return nil
}

func (m *mockEventStore) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockEventStore) List(ctx context.Context, filter model.EventFilter, cursor *model.Cursor, limit int32) ([]model.EventSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, cursor, limit)
	}
	return nil, nil
}

func (m *mockEventStore) ListEventTypes(ctx context.Context, app *string) ([]string, error) {
	if m.listEventTypesFn != nil {
		return m.listEventTypesFn(ctx, app)
	}
	return nil, nil
}

type mockFileOffsetStore struct {
	getFn    func(ctx context.Context, path string) (*model.FileOffset, error)
	upsertFn func(ctx context.Context, offset model.FileOffset) error
	listFn   func(ctx context.Context) ([]model.FileOffset, error)
}

func (m *mockFileOffsetStore) Get(ctx context.Context, path string) (*model.FileOffset, error) {
	if m.getFn != nil {
		return m.getFn(ctx, path)
	}
	return nil, store.ErrNotFound
}

func (m *mockFileOffsetStore) Upsert(ctx context.Context, offset model.FileOffset) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, offset)
	}
	return nil
}

func (m *mockFileOffsetStore) List(ctx context.Context) ([]model.FileOffset, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// memoryEventStore keeps events in a slice with the same uniqueness and
// ordering rules as the events table.
type memoryEventStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []model.Event
	failOn func(events []model.Event) error
}

func (m *memoryEventStore) InsertBatch(_ context.Context, events []model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		if err := m.failOn(events); err != nil {
			return err
		}
	}
	for _, e := range events {
		if m.exists(e.SourceFile, e.SourceOffset) {
			continue
		}
		m.nextID++
		e.ID = m.nextID
		m.rows = append(m.rows, e)
	}
	return nil
}

func (m *memoryEventStore) exists(file string, offset int64) bool {
	for _, r := range m.rows {
		if r.SourceFile == file && r.SourceOffset == offset {
			return true
		}
	}
	return false
}

func (m *memoryEventStore) GetByID(_ context.Context, id int64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			e := r
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryEventStore) List(_ context.Context, filter model.EventFilter, cursor *model.Cursor, limit int32) ([]model.EventSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := append([]model.Event(nil), m.rows...)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TS != rows[j].TS {
			return rows[i].TS > rows[j].TS
		}
		return rows[i].ID > rows[j].ID
	})

	var out []model.EventSummary
	for _, r := range rows {
		if filter.From != nil && r.TS < *filter.From {
			continue
		}
		if filter.To != nil && r.TS > *filter.To {
			continue
		}
		if len(filter.Apps) > 0 && (r.App == nil || !contains(filter.Apps, *r.App)) {
			continue
		}
		if filter.Query != nil && !strings.Contains(deref(r.Message), *filter.Query) && !strings.Contains(deref(r.HTTPPath), *filter.Query) {
			continue
		}
		if cursor != nil && !(r.TS < cursor.BeforeTS || (r.TS == cursor.BeforeTS && r.ID < cursor.BeforeID)) {
			continue
		}
		out = append(out, r.Summary())
		if len(out) == int(limit) {
			break
		}
	}
	return out, nil
}

func (m *memoryEventStore) ListEventTypes(_ context.Context, _ *string) ([]string, error) {
	return nil, nil
}

func (m *memoryEventStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memoryFileOffsetStore struct {
	mu      sync.Mutex
	offsets map[string]model.FileOffset
	upserts int
}

func newMemoryFileOffsetStore() *memoryFileOffsetStore {
	return &memoryFileOffsetStore{offsets: make(map[string]model.FileOffset)}
}

func (m *memoryFileOffsetStore) Get(_ context.Context, path string) (*model.FileOffset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offsets[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (m *memoryFileOffsetStore) Upsert(_ context.Context, offset model.FileOffset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsets[offset.Path] = offset
	m.upserts++
	return nil
}

func (m *memoryFileOffsetStore) List(_ context.Context) ([]model.FileOffset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.FileOffset, 0, len(m.offsets))
	for _, o := range m.offsets {
		out = append(out, o)
	}
	return out, nil
}

type mockStoreProvider struct {
	events  store.EventStore
	offsets store.FileOffsetStore
}

func (m *mockStoreProvider) Events() store.EventStore {
	if m.events != nil {
		return m.events
	}
	return &mockEventStore{}
}

func (m *mockStoreProvider) FileOffsets() store.FileOffsetStore {
	if m.offsets != nil {
		return m.offsets
	}
	return &mockFileOffsetStore{}
}

type mockTxRunner struct {
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
	stores   *mockStoreProvider
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	if m.stores != nil {
		return fn(m.stores)
	}
	return fn(&mockStoreProvider{})
}

type recordingObserver struct {
	mu            sync.Mutex
	batches       int
	inserted      int
	batchFailures int
	filesFailed   int
	scans         int
}

func (r *recordingObserver) ObserveBatch(inserted int, _ model.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	r.inserted += inserted
}

func (r *recordingObserver) IncBatchFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchFailures++
}

func (r *recordingObserver) IncFilesFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filesFailed++
}

func (r *recordingObserver) ObserveScan(time.Duration, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans++
}

type mockLocker struct {
	tryLockFn func(ctx context.Context, key string) (func(), error)
}

func (m *mockLocker) TryLock(ctx context.Context, key string) (func(), error) {
	if m.tryLockFn != nil {
		return m.tryLockFn(ctx, key)
	}
	return func() {}, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string { return &s }
