package mongodb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/huynhanx03/go-crud/pkg/database"
	"github.com/huynhanx03/go-crud/pkg/dto"
	"github.com/huynhanx03/go-crud/pkg/settings"
)

const (
	mongoImage = "mongo:6"
	mongoPort  = "27017/tcp"
)

// gadget is keyed by a string stored as _id.
type gadget struct {
	ID    string `bson:"_id"`
	Name  string `bson:"name"`
	Value int    `bson:"value"`
}

func (g *gadget) GetID() string   { return g.ID }
func (g *gadget) SetID(id string) { g.ID = id }

var _ database.Repository[gadget, string] = (*Repository[gadget, *gadget, string])(nil)

func TestClient_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	if !isDockerRunning(ctx) {
		t.Skip("Docker is not running, skipping integration test")
	}

	uri, terminate, err := setupMongoDBContainer(ctx)
	if err != nil {
		t.Fatalf("failed to setup mongodb container: %v", err)
	}
	defer terminate()

	parsedURI, _ := url.Parse(uri)
	port, _ := strconv.Atoi(parsedURI.Port())
	cfg := &settings.MongoDB{
		Host:            parsedURI.Hostname(),
		Port:            port,
		Database:        "testdb",
		Timeout:         5,
		MaxPoolSize:     10,
		MinPoolSize:     1,
		MaxConnIdleTime: 60,
	}

	client, err := NewClient(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to mongodb: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := NewRepository[gadget, *gadget, string](client.Database(cfg.Database).Collection("gadgets"))

	t.Run("Create", func(t *testing.T) {
		g := &gadget{ID: "create-1", Name: "create", Value: 1}
		if err := repo.Create(ctx, g); err != nil {
			t.Fatalf("Failed to create: %v", err)
		}
		if err := repo.Create(ctx, g); !errors.Is(err, database.ErrDuplicateKey) {
			t.Errorf("second create: want ErrDuplicateKey, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		g := &gadget{ID: "update-1", Name: "update", Value: 300}
		_ = repo.Create(ctx, g)

		g.Value = 400
		if err := repo.Update(ctx, g); err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		fetched, _ := repo.Get(ctx, g.ID)
		if fetched.Value != 400 {
			t.Errorf("Expected Value 400, got %d", fetched.Value)
		}
		if err := repo.Update(ctx, &gadget{ID: "missing"}); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("update missing: want ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		g := &gadget{ID: "delete-1", Name: "delete"}
		_ = repo.Create(ctx, g)

		if err := repo.Delete(ctx, g.ID); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if exists, _ := repo.Exists(ctx, g.ID); exists {
			t.Error("gadget should not exist after delete")
		}
		if _, err := repo.Get(ctx, g.ID); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("get deleted: want ErrNotFound, got %v", err)
		}
	})

	t.Run("Find", func(t *testing.T) {
		for i, name := range []string{"find-a", "find-b", "other"} {
			_ = repo.Create(ctx, &gadget{ID: fmt.Sprintf("find-%d", i), Name: name, Value: i})
		}

		result, err := repo.Find(ctx, &dto.QueryOptions{
			Filters:    []dto.SearchFilter{{Key: "name", Value: "FIND-", Type: "search"}},
			Pagination: &dto.PaginationOptions{Page: 1, PageSize: 10},
		})
		if err != nil {
			t.Fatalf("Failed to find: %v", err)
		}
		if result.Pagination.TotalItems != 2 {
			t.Errorf("Expected 2 items, got %d", result.Pagination.TotalItems)
		}
		if len(*result.Records) != 2 {
			t.Errorf("Expected 2 records, got %d", len(*result.Records))
		}
	})

	t.Run("Batch", func(t *testing.T) {
		models := []*gadget{{ID: "batch-1"}, {ID: "batch-2"}}
		if err := repo.BatchCreate(ctx, models); err != nil {
			t.Fatalf("Failed to batch create: %v", err)
		}
		if err := repo.BatchDelete(ctx, []string{"batch-1", "batch-2"}); err != nil {
			t.Fatalf("Failed to batch delete: %v", err)
		}
		exists1, _ := repo.Exists(ctx, "batch-1")
		exists2, _ := repo.Exists(ctx, "batch-2")
		if exists1 || exists2 {
			t.Error("gadgets should be deleted")
		}
	})

	t.Run("Service", func(t *testing.T) {
		svc := database.AsService[gadget, *gadget, string](repo, func() string { return "svc-1" })
		created, err := svc.Create(ctx, &gadget{Name: "svc"})
		if err != nil || created.ID != "svc-1" {
			t.Fatalf("create = %+v, %v", created, err)
		}
		got, err := svc.Read(ctx, "nope")
		if err != nil || got != nil {
			t.Errorf("read missing = %+v, %v; want nil, nil", got, err)
		}
	})
}

func setupMongoDBContainer(ctx context.Context) (string, func(), error) {
	req := testcontainers.ContainerRequest{
		Image:        mongoImage,
		ExposedPorts: []string{mongoPort},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to start container: %w", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx)
		return "", nil, fmt.Errorf("failed to get endpoint: %w", err)
	}

	uri := fmt.Sprintf("mongodb://%s", endpoint)

	terminate := func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("failed to terminate container: %v\n", err)
		}
	}

	return uri, terminate, nil
}

func isDockerRunning(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "docker", "info")
	if err := cmd.Run(); err != nil {
		return false
	}
	return true
}
