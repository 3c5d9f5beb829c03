package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/cache"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/store"
)

// mockStore implements store.Store with per-operation call counters so
// tests can assert how often the service reaches past the cache.
type mockStore struct {
	funkos map[string]model.Funko
	calls  map[string]int

	findAllErr    error
	findByNameErr error
	findByIDErr   error
	saveErr       error
	updateErr     error
	deleteErr     error
	deleteRefused bool
}

func newMockStore() *mockStore {
	return &mockStore{
		funkos: make(map[string]model.Funko),
		calls:  make(map[string]int),
	}
}

func (m *mockStore) FindAll(_ context.Context) ([]model.Funko, error) {
	m.calls["FindAll"]++
	if m.findAllErr != nil {
		return nil, m.findAllErr
	}
	out := make([]model.Funko, 0, len(m.funkos))
	for _, f := range m.funkos {
		out = append(out, f)
	}
	return out, nil
}

func (m *mockStore) FindByName(_ context.Context, name string) ([]model.Funko, error) {
	m.calls["FindByName"]++
	if m.findByNameErr != nil {
		return nil, m.findByNameErr
	}
	out := make([]model.Funko, 0)
	for _, f := range m.funkos {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockStore) FindByID(_ context.Context, id string) (*model.Funko, error) {
	m.calls["FindByID"]++
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	f, ok := m.funkos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

func (m *mockStore) Save(_ context.Context, f *model.Funko) (*model.Funko, error) {
	m.calls["Save"]++
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	stored := *f
	m.funkos[stored.ID] = stored
	return &stored, nil
}

func (m *mockStore) Update(_ context.Context, id string, f *model.Funko) (*model.Funko, error) {
	m.calls["Update"]++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if _, ok := m.funkos[id]; !ok {
		return nil, store.ErrNotFound
	}
	updated := *f
	updated.ID = id
	m.funkos[id] = updated
	return &updated, nil
}

func (m *mockStore) Delete(_ context.Context, id string) (bool, error) {
	m.calls["Delete"]++
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if m.deleteRefused {
		return false, nil
	}
	if _, ok := m.funkos[id]; !ok {
		return false, nil
	}
	delete(m.funkos, id)
	return true, nil
}

// recordingNotifier collects mutation events.
type recordingNotifier struct {
	events []Event
}

func (n *recordingNotifier) Notify(e Event) {
	n.events = append(n.events, e)
}

func newService(st store.Store) *CatalogService {
	return NewCatalogService(st, cache.New(25), zap.NewNop())
}

func validFunko(name string) *model.Funko {
	return &model.Funko{
		Name:        name,
		Model:       model.ModelAnime,
		Price:       24.99,
		ReleaseDate: model.NewDate(2023, time.April, 20),
	}
}

func TestCatalogService_Save_InvalidNeverReachesStore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Funko)
	}{
		{name: "empty name", mutate: func(f *model.Funko) { f.Name = "" }},
		{name: "negative price", mutate: func(f *model.Funko) { f.Price = -1 }},
		{name: "missing release date", mutate: func(f *model.Funko) { f.ReleaseDate = model.Date{} }},
		{name: "missing model", mutate: func(f *model.Funko) { f.Model = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			st := newMockStore()
			svc := newService(st)
			f := validFunko("Invalid")
			tt.mutate(f)

			// Act
			_, saveErr := svc.Save(context.Background(), f)
			_, updateErr := svc.Update(context.Background(), "some-id", f)

			// Assert
			if !errors.Is(saveErr, ErrNotValid) {
				t.Errorf("Save() error = %v, want ErrNotValid", saveErr)
			}
			if !errors.Is(updateErr, ErrNotValid) {
				t.Errorf("Update() error = %v, want ErrNotValid", updateErr)
			}
			if total := len(st.calls); total != 0 {
				t.Errorf("store was invoked %v times for invalid funko, want 0", st.calls)
			}
		})
	}
}

func TestCatalogService_Save_GeneratesID(t *testing.T) {
	// Arrange
	st := newMockStore()
	svc := newService(st)

	// Act
	saved, err := svc.Save(context.Background(), validFunko("Goku"))

	// Assert
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if saved.ID == "" {
		t.Error("Save() should generate an id")
	}
}

func TestCatalogService_Save_RoundTrip(t *testing.T) {
	// Arrange
	st := newMockStore()
	svc := newService(st)
	f := validFunko("MadiFunko")

	// Act
	saved, err := svc.Save(context.Background(), f)
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	got, err := svc.FindByID(context.Background(), saved.ID)

	// Assert
	if err != nil {
		t.Fatalf("FindByID() unexpected error: %v", err)
	}
	if got.ID != saved.ID || got.Name != f.Name || got.Model != f.Model ||
		got.Price != f.Price || !got.ReleaseDate.Equal(f.ReleaseDate.Time) {
		t.Errorf("FindByID() = %+v, want %+v", got, saved)
	}

	// Save already populated the cache, so the lookup never hit the store.
	if st.calls["FindByID"] != 0 {
		t.Errorf("store FindByID called %d times, want 0", st.calls["FindByID"])
	}
}

func TestCatalogService_Save_StoreRejection(t *testing.T) {
	// Arrange
	st := newMockStore()
	st.saveErr = store.ErrAlreadyExists
	svc := newService(st)

	// Act
	_, err := svc.Save(context.Background(), validFunko("Dup"))

	// Assert
	if !errors.Is(err, ErrNotSaved) {
		t.Errorf("Save() error = %v, want ErrNotSaved", err)
	}
}

func TestCatalogService_Save_StoreCommunicationFailure(t *testing.T) {
	// Arrange
	st := newMockStore()
	st.saveErr = errors.New("connection reset")
	svc := newService(st)
	f := validFunko("Unlucky")

	// Act
	_, err := svc.Save(context.Background(), f)

	// Assert
	if !errors.Is(err, ErrStore) {
		t.Errorf("Save() error = %v, want ErrStore", err)
	}
	if errors.Is(err, ErrNotSaved) {
		t.Error("communication failure must stay distinct from ErrNotSaved")
	}
}

func TestCatalogService_FindByID_Idempotent(t *testing.T) {
	// Arrange
	st := newMockStore()
	st.funkos["id-1"] = *validFunko("Cached")
	svc := newService(st)

	// Act
	first, err := svc.FindByID(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("FindByID() unexpected error: %v", err)
	}
	second, err := svc.FindByID(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("FindByID() second call unexpected error: %v", err)
	}

	// Assert
	if first.Name != second.Name || first.Price != second.Price {
		t.Errorf("consecutive lookups disagree: %+v vs %+v", first, second)
	}
	if st.calls["FindByID"] != 1 {
		t.Errorf("store FindByID called %d times, want 1", st.calls["FindByID"])
	}
}

func TestCatalogService_FindByID_NotFound(t *testing.T) {
	st := newMockStore()
	svc := newService(st)

	_, err := svc.FindByID(context.Background(), "missing")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() error = %v, want ErrNotFound", err)
	}
}

func TestCatalogService_FindByName(t *testing.T) {
	// Arrange
	st := newMockStore()
	st.funkos["a"] = model.Funko{ID: "a", Name: "Stitch", Model: model.ModelDisney, Price: 1, ReleaseDate: model.Today()}
	st.funkos["b"] = model.Funko{ID: "b", Name: "Stitch", Model: model.ModelDisney, Price: 2, ReleaseDate: model.Today()}
	svc := newService(st)

	// Act
	got, err := svc.FindByName(context.Background(), "Stitch")

	// Assert
	if err != nil {
		t.Fatalf("FindByName() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("FindByName() returned %d funkos, want 2", len(got))
	}
	if st.calls["FindByName"] != 1 {
		t.Errorf("store FindByName called %d times, want 1", st.calls["FindByName"])
	}
}

func TestCatalogService_FindByName_Empty(t *testing.T) {
	st := newMockStore()
	svc := newService(st)

	_, err := svc.FindByName(context.Background(), "NoExiste")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByName() error = %v, want ErrNotFound", err)
	}
}

func TestCatalogService_FindAll_EmptyIsNotAnError(t *testing.T) {
	st := newMockStore()
	svc := newService(st)

	got, err := svc.FindAll(context.Background())

	if err != nil {
		t.Fatalf("FindAll() unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FindAll() returned %d funkos, want 0", len(got))
	}
}

func TestCatalogService_Update_RekeysReplacement(t *testing.T) {
	// Arrange
	st := newMockStore()
	st.funkos["id-1"] = *validFunko("Original")
	svc := newService(st)

	replacement := validFunko("Replacement")
	replacement.ID = "some-other-id"

	// Act
	updated, err := svc.Update(context.Background(), "id-1", replacement)

	// Assert
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.ID != "id-1" {
		t.Errorf("Update() must re-key the replacement to the lookup id: got %s", updated.ID)
	}

	// The cache entry lives under the lookup id, not the stray one.
	got, err := svc.FindByID(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("FindByID() unexpected error: %v", err)
	}
	if got.Name != "Replacement" {
		t.Errorf("Name = %s, want Replacement", got.Name)
	}
	if st.calls["FindByID"] != 0 {
		t.Errorf("store FindByID called %d times, want 0 (cache hit)", st.calls["FindByID"])
	}
}

func TestCatalogService_Update_NotFound(t *testing.T) {
	st := newMockStore()
	svc := newService(st)

	_, err := svc.Update(context.Background(), "missing", validFunko("X"))

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}

	// The speculative cache entry must not survive the failed write.
	if _, err := svc.FindByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() after failed update error = %v, want ErrNotFound", err)
	}
}

func TestCatalogService_Delete(t *testing.T) {
	// Arrange
	st := newMockStore()
	st.funkos["id-1"] = *validFunko("Victim")
	svc := newService(st)

	// Act
	deleted, err := svc.Delete(context.Background(), "id-1")

	// Assert
	if err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if deleted.Name != "Victim" {
		t.Errorf("Delete() returned %+v, want the removed funko", deleted)
	}

	// The cache entry was invalidated: the next lookup goes to the
	// store and reports absence instead of serving the stale value.
	storeCalls := st.calls["FindByID"]
	if _, err := svc.FindByID(context.Background(), "id-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() after delete error = %v, want ErrNotFound", err)
	}
	if st.calls["FindByID"] != storeCalls+1 {
		t.Error("FindByID after delete should have queried the store")
	}
}

func TestCatalogService_Delete_Missing(t *testing.T) {
	// Arrange
	st := newMockStore()
	svc := newService(st)

	// Act
	_, err := svc.Delete(context.Background(), "missing")

	// Assert
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if st.calls["Delete"] != 0 {
		t.Errorf("store Delete called %d times for missing id, want 0", st.calls["Delete"])
	}
}

func TestCatalogService_Delete_StoreRefusal(t *testing.T) {
	// Arrange
	st := newMockStore()
	st.funkos["id-1"] = *validFunko("Stuck")
	st.deleteRefused = true
	svc := newService(st)

	// Act
	_, err := svc.Delete(context.Background(), "id-1")

	// Assert
	if !errors.Is(err, ErrNotRemoved) {
		t.Errorf("Delete() error = %v, want ErrNotRemoved", err)
	}
}

func TestCatalogService_CacheEviction_FallsBackToStore(t *testing.T) {
	// Arrange: a tiny cache makes the eviction visible.
	st := newMockStore()
	svc := NewCatalogService(st, cache.New(2), zap.NewNop())
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		saved, err := svc.Save(ctx, validFunko(fmt.Sprintf("Funko %d", i)))
		if err != nil {
			t.Fatalf("Save() unexpected error: %v", err)
		}
		ids = append(ids, saved.ID)
	}

	// Act: the first id was evicted, so the lookup must hit the store.
	before := st.calls["FindByID"]
	got, err := svc.FindByID(ctx, ids[0])

	// Assert
	if err != nil {
		t.Fatalf("FindByID() unexpected error: %v", err)
	}
	if got.Name != "Funko 0" {
		t.Errorf("Name = %s, want Funko 0", got.Name)
	}
	if st.calls["FindByID"] != before+1 {
		t.Error("evicted entry should have been fetched from the store")
	}
}

func TestCatalogService_Notifier(t *testing.T) {
	// Arrange
	st := newMockStore()
	svc := newService(st)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	ctx := context.Background()

	// Act
	saved, err := svc.Save(ctx, validFunko("Watched"))
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if _, err := svc.Update(ctx, saved.ID, validFunko("Renamed")); err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if _, err := svc.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}

	// Assert
	if len(notifier.events) != 3 {
		t.Fatalf("got %d events, want 3", len(notifier.events))
	}
	wantActions := []string{ActionSaved, ActionUpdated, ActionDeleted}
	for i, want := range wantActions {
		if notifier.events[i].Action != want {
			t.Errorf("event[%d].Action = %s, want %s", i, notifier.events[i].Action, want)
		}
	}
}
