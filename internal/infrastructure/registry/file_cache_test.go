package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"hactl/internal/domain"
	"hactl/internal/pkg/logger"
)

type stubTransport struct {
	entities    []domain.Entity
	entitiesErr error
	fetchCalls  int
}

func (s *stubTransport) FetchEntities(ctx context.Context) ([]domain.Entity, error) {
	s.fetchCalls++
	return s.entities, s.entitiesErr
}

func (s *stubTransport) FetchServices(ctx context.Context) ([]domain.Service, error) {
	return nil, nil
}

func (s *stubTransport) FetchAreas(ctx context.Context) ([]domain.Area, error) {
	return nil, nil
}

func (s *stubTransport) FetchDevices(ctx context.Context) ([]domain.Device, error) {
	return nil, nil
}

func (s *stubTransport) FetchLabels(ctx context.Context) ([]domain.Label, error) {
	return nil, nil
}

func (s *stubTransport) Dispatch(ctx context.Context, entityID string, call domain.ServiceCall) (domain.DispatchOutcome, error) {
	return domain.DispatchOutcome{}, errors.New("not implemented")
}

func (s *stubTransport) EntityState(ctx context.Context, entityID string) (domain.Entity, error) {
	return domain.Entity{}, errors.New("not implemented")
}

func (s *stubTransport) RenderTemplate(ctx context.Context, template string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubTransport) APIInfo(ctx context.Context) (map[string]any, error) {
	return nil, errors.New("not implemented")
}

func fixedTTL(d time.Duration) TTLPolicy {
	return func(domain.Category) time.Duration { return d }
}

func testEntities() []domain.Entity {
	return []domain.Entity{
		{EntityID: "light.kitchen_main", Domain: "light", FriendlyName: "Kitchen Light"},
		{EntityID: "light.bedroom", Domain: "light", FriendlyName: "Bedroom Light"},
	}
}

func TestFirstReadFetchesAndCaches(t *testing.T) {
	tr := &stubTransport{entities: testEntities()}
	c := New(t.TempDir(), "http://hub:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))

	got, err := c.Entities(context.Background(), false)
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if diff := cmp.Diff(testEntities(), got); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}

	// Second read must hit the snapshot, not the transport.
	if _, err := c.Entities(context.Background(), false); err != nil {
		t.Fatalf("Entities (cached): %v", err)
	}
	if tr.fetchCalls != 1 {
		t.Errorf("fetchCalls = %d, want 1", tr.fetchCalls)
	}
}

func TestStaleSnapshotServedWithoutFresh(t *testing.T) {
	tr := &stubTransport{entities: testEntities()}
	c := New(t.TempDir(), "http://hub:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))

	if _, err := c.Entities(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return time.Now().Add(time.Hour) }

	if _, err := c.Entities(context.Background(), false); err != nil {
		t.Fatalf("Entities (stale, fresh=false): %v", err)
	}
	if tr.fetchCalls != 1 {
		t.Errorf("fetchCalls = %d, want 1 (stale served without refresh)", tr.fetchCalls)
	}

	if _, err := c.Entities(context.Background(), true); err != nil {
		t.Fatalf("Entities (stale, fresh=true): %v", err)
	}
	if tr.fetchCalls != 2 {
		t.Errorf("fetchCalls = %d, want 2 (fresh forces refresh)", tr.fetchCalls)
	}
}

func TestRefreshFailureFallsBackToStale(t *testing.T) {
	tr := &stubTransport{entities: testEntities()}
	c := New(t.TempDir(), "http://hub:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))

	if _, err := c.Entities(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return time.Now().Add(time.Hour) }
	tr.entitiesErr = errors.New("hub unreachable")

	got, err := c.Entities(context.Background(), true)
	if err != nil {
		t.Fatalf("Entities should degrade to stale data, got error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d entities from stale snapshot, want 2", len(got))
	}
}

func TestFetchFailureWithoutSnapshot(t *testing.T) {
	tr := &stubTransport{entitiesErr: errors.New("hub unreachable")}
	c := New(t.TempDir(), "http://hub:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))

	_, err := c.Entities(context.Background(), false)
	var unavailable *domain.CacheUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want CacheUnavailableError", err)
	}
	if unavailable.Category != domain.CategoryEntities {
		t.Errorf("category = %v, want entities", unavailable.Category)
	}
}

func TestServerChangeInvalidatesSnapshot(t *testing.T) {
	dir := t.TempDir()
	tr := &stubTransport{entities: testEntities()}
	c := New(dir, "http://hub-a:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))
	if _, err := c.Entities(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	c2 := New(dir, "http://hub-b:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))
	if _, err := c2.Entities(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if tr.fetchCalls != 2 {
		t.Errorf("fetchCalls = %d, want 2 (server change forces refetch)", tr.fetchCalls)
	}
}

func TestInvalidateRemovesSnapshots(t *testing.T) {
	tr := &stubTransport{entities: testEntities()}
	c := New(t.TempDir(), "http://hub:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))
	if _, err := c.Entities(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	if err := c.Invalidate(domain.CategoryEntities); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := c.Entities(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if tr.fetchCalls != 2 {
		t.Errorf("fetchCalls = %d, want 2 after invalidation", tr.fetchCalls)
	}
}

func TestRefreshErrorType(t *testing.T) {
	tr := &stubTransport{entitiesErr: errors.New("hub unreachable")}
	c := New(t.TempDir(), "http://hub:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))

	err := c.Refresh(context.Background(), domain.CategoryEntities)
	var refreshErr *domain.CacheRefreshError
	if !errors.As(err, &refreshErr) {
		t.Fatalf("error = %v, want CacheRefreshError", err)
	}
}

func TestStatusReportsAllCategories(t *testing.T) {
	tr := &stubTransport{entities: testEntities()}
	c := New(t.TempDir(), "http://hub:8123", tr, fixedTTL(5*time.Minute), logger.NewStd(false))
	if _, err := c.Entities(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	statuses, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(statuses) != len(domain.Categories()) {
		t.Fatalf("got %d statuses, want %d", len(statuses), len(domain.Categories()))
	}
	byCat := map[domain.Category]domain.CategoryStatus{}
	for _, st := range statuses {
		byCat[st.Category] = st
	}
	ent := byCat[domain.CategoryEntities]
	if !ent.Present || ent.Count != 2 || ent.Stale {
		t.Errorf("entities status = %+v, want present fresh count=2", ent)
	}
	if byCat[domain.CategoryAreas].Present {
		t.Errorf("areas status = %+v, want absent", byCat[domain.CategoryAreas])
	}
}
