package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/models"
	"github.com/vigil-intel/vigil-engine/pkg/services"
)

// ClientListResponse for GET /api/clients
type ClientListResponse struct {
	Clients []*models.Client `json:"clients"`
	Total   int              `json:"total"`
}

// ClientEntityListResponse for GET /api/clients/{id}/entities
type ClientEntityListResponse struct {
	Entities []*models.ClientEntity `json:"entities"`
	Total    int                    `json:"total"`
}

// AddClientEntityRequest for POST /api/clients/{id}/entities
type AddClientEntityRequest struct {
	EntityName string   `json:"entity_name"`
	EntityType string   `json:"entity_type,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
}

// ClientHandler handles client management HTTP requests.
type ClientHandler struct {
	clientService services.ClientService
	logger        *zap.Logger
}

// NewClientHandler creates a new client handler.
func NewClientHandler(clientService services.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// RegisterRoutes registers the client handler's routes on the given mux.
func (h *ClientHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/clients", h.List)
	mux.HandleFunc("POST /api/clients", h.Create)
	mux.HandleFunc("GET /api/clients/{id}", h.Get)
	mux.HandleFunc("PUT /api/clients/{id}", h.Update)
	mux.HandleFunc("DELETE /api/clients/{id}", h.Delete)
	mux.HandleFunc("GET /api/clients/{id}/entities", h.ListEntities)
	mux.HandleFunc("POST /api/clients/{id}/entities", h.AddEntity)
	mux.HandleFunc("DELETE /api/clients/{id}/entities/{eid}", h.RemoveEntity)
}

// List handles GET /api/clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		_ = ServiceError(w, err)
		return
	}
	if clients == nil {
		clients = []*models.Client{}
	}

	_ = WriteJSON(w, http.StatusOK, ClientListResponse{Clients: clients, Total: len(clients)})
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := h.clientService.Create(r.Context(), &client)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/clients/{id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid client id")
		return
	}

	client, err := h.clientService.Get(r.Context(), id)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, client)
}

// Update handles PUT /api/clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid client id")
		return
	}

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	client.ID = id

	updated, err := h.clientService.Update(r.Context(), &client)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid client id")
		return
	}

	if err := h.clientService.Delete(r.Context(), id); err != nil {
		_ = ServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListEntities handles GET /api/clients/{id}/entities.
func (h *ClientHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid client id")
		return
	}

	entities, err := h.clientService.ListEntities(r.Context(), id)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}
	if entities == nil {
		entities = []*models.ClientEntity{}
	}

	_ = WriteJSON(w, http.StatusOK, ClientEntityListResponse{Entities: entities, Total: len(entities)})
}

// AddEntity handles POST /api/clients/{id}/entities.
func (h *ClientHandler) AddEntity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid client id")
		return
	}

	var req AddClientEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	entity := &models.ClientEntity{
		ClientID:   id,
		EntityName: req.EntityName,
		EntityType: req.EntityType,
		Aliases:    req.Aliases,
	}
	created, err := h.clientService.AddEntity(r.Context(), entity)
	if err != nil {
		_ = ServiceError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, created)
}

// RemoveEntity handles DELETE /api/clients/{id}/entities/{eid}.
func (h *ClientHandler) RemoveEntity(w http.ResponseWriter, r *http.Request) {
	eid, err := uuid.Parse(r.PathValue("eid"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid entity id")
		return
	}

	if err := h.clientService.RemoveEntity(r.Context(), eid); err != nil {
		_ = ServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
