package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/repositories"
	"github.com/hearthkeep/hearth/internal/shared"
)

func setupServer(t *testing.T) (*Server, *repositories.Registry) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	registry := repositories.NewRegistry(db)
	srv := New(registry, shared.ServerConfig{Host: "127.0.0.1", Port: 0}, shared.NewLogger(io.Discard))
	return srv, registry
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupServer(t)
	rec := doGet(t, srv, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestCollectionEndpoints(t *testing.T) {
	srv, registry := setupServer(t)

	a := &models.Appliance{Name: "Dishwasher", Location: "kitchen"}
	if err := registry.Appliances.Create(a); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := registry.Appliances.Create(&models.Appliance{Name: "Heater", Location: "basement"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("lists a collection", func(t *testing.T) {
		rec := doGet(t, srv, "/api/appliances")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var items []models.Appliance
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(items) != 2 {
			t.Errorf("item count = %d, want 2", len(items))
		}
	})

	t.Run("filters by query param", func(t *testing.T) {
		rec := doGet(t, srv, "/api/appliances?location=kitchen")
		var items []models.Appliance
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(items) != 1 || items[0].Name != "Dishwasher" {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("fetches a single entity", func(t *testing.T) {
		rec := doGet(t, srv, "/api/appliances/"+a.ID)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var item models.Appliance
		if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if item.ID != a.ID {
			t.Errorf("ID = %s, want %s", item.ID, a.ID)
		}
	})

	t.Run("missing entity returns 404", func(t *testing.T) {
		rec := doGet(t, srv, "/api/appliances/nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestDueEndpoint(t *testing.T) {
	srv, registry := setupServer(t)

	s := &models.MaintenanceSchedule{Name: "Gutters", Frequency: 6, FrequencyUnit: "months", BaseDate: "01/15/2024"}
	if err := registry.Schedules.Create(s); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec := doGet(t, srv, "/api/maintenance/due")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var items []repositories.DueItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("item count = %d, want 1", len(items))
	}
}

func TestSubscriptionsEndpointIncludesTotal(t *testing.T) {
	srv, registry := setupServer(t)

	if err := registry.Subscriptions.Create(&models.Subscription{Name: "Streaming", Cost: 12, BillingCycle: models.CycleMonthly, Active: true}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec := doGet(t, srv, "/api/subscriptions")
	var body struct {
		Subscriptions []models.Subscription `json:"subscriptions"`
		MonthlyTotal  float64               `json:"monthly_total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Subscriptions) != 1 || body.MonthlyTotal != 12 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestProjectMaterialsEndpoint(t *testing.T) {
	srv, registry := setupServer(t)

	p := &models.Project{Name: "Deck"}
	if err := registry.Projects.Create(p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := registry.Materials.Create(&models.ProjectMaterial{ProjectID: p.ID, Name: "Boards", Cost: 10, Quantity: 3}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec := doGet(t, srv, "/api/projects/"+p.ID+"/materials")
	var body struct {
		Materials []models.ProjectMaterial `json:"materials"`
		TotalCost float64                  `json:"total_cost"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Materials) != 1 || body.TotalCost != 30 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestReadOnly(t *testing.T) {
	srv, _ := setupServer(t)

	for _, path := range []string{"/api/appliances", "/api/nonexistent"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, want 405", path, rec.Code)
		}
	}
}
