package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hearthkeep/hearth/internal/shared"
)

// Router builds the read-only API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(s.logger))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/appliances", s.list(func(c map[string]any) (any, error) {
		return s.registry.Appliances.List(c)
	}, "location", "property_id")).Methods(http.MethodGet)
	api.HandleFunc("/appliances/{id}", s.get(func(id string) (any, error) {
		return s.registry.Appliances.Get(id)
	})).Methods(http.MethodGet)

	api.HandleFunc("/vehicles", s.list(func(c map[string]any) (any, error) {
		return s.registry.Vehicles.List(c)
	}, "make")).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", s.get(func(id string) (any, error) {
		return s.registry.Vehicles.Get(id)
	})).Methods(http.MethodGet)

	api.HandleFunc("/maintenance/due", s.handleDue).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/schedules", s.list(func(c map[string]any) (any, error) {
		return s.registry.Schedules.List(c)
	}, "target_kind", "target_id")).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/schedules/{id}", s.get(func(id string) (any, error) {
		return s.registry.Schedules.Get(id)
	})).Methods(http.MethodGet)
	api.HandleFunc("/maintenance/completions", s.list(func(c map[string]any) (any, error) {
		return s.registry.Completions.List(c)
	}, "schedule_id")).Methods(http.MethodGet)

	api.HandleFunc("/companies", s.list(func(c map[string]any) (any, error) {
		return s.registry.Companies.List(c)
	}, "category")).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id}", s.get(func(id string) (any, error) {
		return s.registry.Companies.Get(id)
	})).Methods(http.MethodGet)

	api.HandleFunc("/subscriptions", s.handleSubscriptions).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions/{id}", s.get(func(id string) (any, error) {
		return s.registry.Subscriptions.Get(id)
	})).Methods(http.MethodGet)

	api.HandleFunc("/properties", s.list(func(c map[string]any) (any, error) {
		return s.registry.Properties.List(c)
	}, "type")).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}", s.get(func(id string) (any, error) {
		return s.registry.Properties.Get(id)
	})).Methods(http.MethodGet)

	api.HandleFunc("/projects", s.list(func(c map[string]any) (any, error) {
		return s.registry.Projects.List(c)
	}, "property_id", "status")).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", s.get(func(id string) (any, error) {
		return s.registry.Projects.Get(id)
	})).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/materials", s.handleProjectMaterials).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// list builds a handler that filters a collection by whitelisted query params.
func (s *Server) list(fetch func(map[string]any) (any, error), filters ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria := map[string]any{}
		for _, f := range filters {
			if v := r.URL.Query().Get(f); v != "" {
				criteria[f] = v
			}
		}
		items, err := fetch(criteria)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// get builds a handler for single-entity lookups.
func (s *Server) get(fetch func(string) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := fetch(mux.Vars(r)["id"])
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	report, err := s.registry.Schedules.DueReport(time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if v := r.URL.Query().Get("company_id"); v != "" {
		criteria["company_id"] = v
	}
	if v := r.URL.Query().Get("active"); v != "" {
		criteria["active"] = v == "true"
	}

	subs, err := s.registry.Subscriptions.List(criteria)
	if err != nil {
		s.writeError(w, err)
		return
	}
	total, err := s.registry.Subscriptions.MonthlyTotal()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions": subs,
		"monthly_total": total,
	})
}

func (s *Server) handleProjectMaterials(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]
	if _, err := s.registry.Projects.Get(projectID); err != nil {
		s.writeError(w, err)
		return
	}
	materials, err := s.registry.Materials.List(map[string]any{"project_id": projectID})
	if err != nil {
		s.writeError(w, err)
		return
	}
	total, err := s.registry.Materials.TotalCost(projectID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"materials":  materials,
		"total_cost": total,
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, shared.ErrEntityNotFound) {
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
