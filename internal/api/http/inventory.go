package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/escobedo-lab/school/internal/inventory"
)

type InventoryStore interface {
	Create(ctx context.Context, e inventory.Equipment) (inventory.Equipment, error)
	Get(ctx context.Context, id string) (inventory.Equipment, error)
	List(ctx context.Context) ([]inventory.Equipment, error)
	ReportFault(ctx context.Context, equipmentID, fault string) (inventory.Maintenance, error)
	CloseRepair(ctx context.Context, maintenanceID, solution string) error
	ListMaintenance(ctx context.Context, equipmentID string) ([]inventory.Maintenance, error)
}

func MountInventory(r chi.Router, store InventoryStore) {
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Kind  string `json:"kind"`
			Brand string `json:"brand"`
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Kind == "" {
			http.Error(w, "kind required", http.StatusBadRequest)
			return
		}
		e, err := store.Create(r.Context(), inventory.Equipment{
			Kind:  req.Kind,
			Brand: req.Brand,
			Model: req.Model,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		out, err := store.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		e, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, inventory.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, e)
	})

	r.Post("/{id}/faults", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Fault string `json:"fault"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Fault == "" {
			http.Error(w, "fault required", http.StatusBadRequest)
			return
		}
		m, err := store.ReportFault(r.Context(), chi.URLParam(r, "id"), req.Fault)
		if errors.Is(err, inventory.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	})

	r.Get("/{id}/maintenance", func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListMaintenance(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

}

// MountMaintenance closes out repair records; lives beside /equipment
// because a repair is addressed by its own id, not the equipment's.
func MountMaintenance(r chi.Router, store InventoryStore) {
	r.Put("/{id}/repair", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Solution string `json:"solution"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Solution == "" {
			http.Error(w, "solution required", http.StatusBadRequest)
			return
		}
		err := store.CloseRepair(r.Context(), chi.URLParam(r, "id"), req.Solution)
		if errors.Is(err, inventory.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
