package cached

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huynhanx03/go-crud/pkg/common/cache"
	"github.com/huynhanx03/go-crud/pkg/common/cache/local"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/crud/crudtest"
)

type widgetService = Service[crudtest.Widget, *crudtest.Widget, int64]

var _ crud.Service[crudtest.Widget, int64] = (*widgetService)(nil)

func newCached(t *testing.T) (*widgetService, *crudtest.Service[crudtest.Widget, *crudtest.Widget, int64], *local.Engine) {
	t.Helper()
	backing := crudtest.NewWidgets()
	engine := local.New(nil)
	return New[crudtest.Widget, *crudtest.Widget](backing, engine, "widgets", time.Minute, nil), backing, engine
}

// failingEngine rejects every operation.
type failingEngine struct{ cache.CacheEngine }

var errDown = errors.New("cache down")

func (failingEngine) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDown }
func (failingEngine) Set(context.Context, string, any, time.Duration) error {
	return errDown
}
func (failingEngine) BatchDelete(context.Context, []string) error { return errDown }

// =============================================================================
// Reads
// =============================================================================

func TestRead_ServedFromCache(t *testing.T) {
	ctx := context.Background()
	svc, backing, _ := newCached(t)
	backing.Put(crudtest.Widget{ID: 7, Name: "gear"})

	for i := 0; i < 3; i++ {
		got, err := svc.Read(ctx, 7)
		if err != nil || got == nil || got.Name != "gear" {
			t.Fatalf("Read #%d = %+v, %v", i, got, err)
		}
	}
	if n := backing.Calls().Read; n != 1 {
		t.Errorf("backing reads = %d, want 1", n)
	}
}

func TestRead_AbsenceNotCached(t *testing.T) {
	ctx := context.Background()
	svc, backing, engine := newCached(t)

	for i := 0; i < 2; i++ {
		got, err := svc.Read(ctx, 404)
		if err != nil || got != nil {
			t.Fatalf("Read = %+v, %v", got, err)
		}
	}
	if n := backing.Calls().Read; n != 2 {
		t.Errorf("backing reads = %d, want 2", n)
	}
	if engine.Len() != 0 {
		t.Errorf("cache holds %d entries", engine.Len())
	}
}

func TestReadAll_CachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	svc, backing, _ := newCached(t)
	backing.Put(crudtest.Widget{ID: 1, Name: "a"})

	for i := 0; i < 2; i++ {
		if all, err := svc.ReadAll(ctx); err != nil || len(all) != 1 {
			t.Fatalf("ReadAll = %v, %v", all, err)
		}
	}
	if n := backing.Calls().ReadAll; n != 1 {
		t.Fatalf("backing ReadAll = %d, want 1", n)
	}

	if _, err := svc.Create(ctx, &crudtest.Widget{Name: "b"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	all, err := svc.ReadAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("ReadAll after create = %v, %v", all, err)
	}
	if n := backing.Calls().ReadAll; n != 2 {
		t.Errorf("backing ReadAll = %d, want 2", n)
	}
}

// =============================================================================
// Writes
// =============================================================================

func TestWrites(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		write    func(*widgetService) error
		wantName string
		wantNil  bool
	}{
		{
			name: "update_refreshes_entry",
			write: func(s *widgetService) error {
				_, err := s.Update(ctx, &crudtest.Widget{ID: 1, Name: "renamed"})
				return err
			},
			wantName: "renamed",
		},
		{
			name:    "delete_drops_entry",
			write:   func(s *widgetService) error { return s.Delete(ctx, 1) },
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, backing, _ := newCached(t)
			backing.Put(crudtest.Widget{ID: 1, Name: "original"})

			if _, err := svc.Read(ctx, 1); err != nil {
				t.Fatalf("warm: %v", err)
			}
			if err := tt.write(svc); err != nil {
				t.Fatalf("write: %v", err)
			}

			got, err := svc.Read(ctx, 1)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Name != tt.wantName {
				t.Errorf("got %+v, want name %q", got, tt.wantName)
			}
		})
	}
}

func TestUpdate_MissingDropsEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, engine := newCached(t)
	_ = engine.Set(ctx, svc.key(9), crudtest.Widget{ID: 9, Name: "stale"}, 0)

	got, err := svc.Update(ctx, &crudtest.Widget{ID: 9, Name: "x"})
	if err != nil || got != nil {
		t.Fatalf("Update = %+v, %v", got, err)
	}
	if _, ok, _ := engine.Get(ctx, svc.key(9)); ok {
		t.Error("stale entry survived")
	}
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	svc, backing, engine := newCached(t)
	backing.Put(crudtest.Widget{ID: 1, Name: "a"})
	_ = engine.Set(ctx, "other:1", 1, 0)

	_, _ = svc.Read(ctx, 1)
	_, _ = svc.ReadAll(ctx)
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if engine.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", engine.Len())
	}
}

// =============================================================================
// Failure handling
// =============================================================================

func TestCacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	backing := crudtest.NewWidgets()
	backing.Put(crudtest.Widget{ID: 1, Name: "a"})
	svc := New[crudtest.Widget, *crudtest.Widget](backing, failingEngine{}, "widgets", 0, nil)

	got, err := svc.Read(ctx, 1)
	if err != nil || got == nil || got.Name != "a" {
		t.Fatalf("Read = %+v, %v", got, err)
	}
	if err := svc.Delete(ctx, 1); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestServiceFaultPropagates(t *testing.T) {
	ctx := context.Background()
	svc, backing, engine := newCached(t)
	backing.Fault = errors.New("boom")

	if _, err := svc.Read(ctx, 1); !errors.Is(err, backing.Fault) {
		t.Errorf("Read err = %v", err)
	}
	if _, err := svc.Create(ctx, &crudtest.Widget{Name: "a"}); !errors.Is(err, backing.Fault) {
		t.Errorf("Create err = %v", err)
	}
	if engine.Len() != 0 {
		t.Errorf("cache holds %d entries", engine.Len())
	}
}

// gatedService holds reads until release is closed, then fails them if their
// context was cancelled meanwhile.
type gatedService struct {
	crud.Service[crudtest.Widget, int64]
	entered chan struct{}
	release chan struct{}
}

func (g *gatedService) Read(ctx context.Context, id int64) (*crudtest.Widget, error) {
	g.entered <- struct{}{}
	<-g.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Service.Read(ctx, id)
}

func TestRead_SharedLoadOutlivesFirstCaller(t *testing.T) {
	backing := crudtest.NewWidgets()
	backing.Put(crudtest.Widget{ID: 1, Name: "a"})
	gated := &gatedService{Service: backing, entered: make(chan struct{}, 2), release: make(chan struct{})}
	engine := local.New(nil)
	svc := New[crudtest.Widget, *crudtest.Widget](gated, engine, "widgets", time.Minute, nil)

	type result struct {
		got *crudtest.Widget
		err error
	}
	first, second := make(chan result, 1), make(chan result, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		got, err := svc.Read(ctx, 1)
		first <- result{got, err}
	}()
	<-gated.entered

	go func() {
		got, err := svc.Read(context.Background(), 1)
		second <- result{got, err}
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	close(gated.release)

	for name, ch := range map[string]chan result{"first": first, "second": second} {
		r := <-ch
		if r.err != nil || r.got == nil || r.got.Name != "a" {
			t.Errorf("%s caller = %+v, %v", name, r.got, r.err)
		}
	}
	if engine.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", engine.Len())
	}
}
