package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/domain"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/schema"
	"github.com/aussiebroadwan/clientdesk/internal/clientdesk/service"
	"github.com/aussiebroadwan/clientdesk/pkg/clientsdk"
	"github.com/aussiebroadwan/clientdesk/pkg/httpx"
	"github.com/aussiebroadwan/clientdesk/pkg/slogx"
)

// ClientsHandler handles all client record endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

func toClientResponse(c domain.Client) clientsdk.Client {
	return clientsdk.Client{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt.UTC(),
	}
}

// parseID reads the {id} path segment. Ids are positive integers.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid client ID")
		return 0, false
	}
	return id, true
}

// writeBodyError answers a body that failed to decode or validate.
func writeBodyError(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteJSON(w, http.StatusBadRequest, clientsdk.ErrorResponse{
			Message: "Validation failed",
			Errors:  toFieldErrors(verr.Errors),
		})
	default:
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON in request body")
	}
}

func toFieldErrors(in []schema.FieldError) []clientsdk.FieldError {
	out := make([]clientsdk.FieldError, len(in))
	for i, fe := range in {
		out[i] = clientsdk.FieldError{Field: fe.Field, Message: fe.Message}
	}
	return out
}

// HandleList handles GET /clients
//
//	@Summary		List clients
//	@Description	Returns at most 100 clients, newest first. search keeps only clients whose name contains it, ignoring case.
//	@Tags			Clients
//	@Produce		json
//	@Param			search	query		string					false	"Case-insensitive name substring"
//	@Success		200		{array}		clientsdk.Client		"Clients, newest first"
//	@Failure		500		{object}	clientsdk.ErrorResponse	"message"
//	@Router			/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	search := strings.TrimSpace(r.URL.Query().Get("search"))

	clients, err := h.ClientService.ListClients(ctx, search)
	if err != nil {
		log.Error("failed to fetch clients", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to fetch clients")
		return
	}

	response := make([]clientsdk.Client, len(clients))
	for i, c := range clients {
		response[i] = toClientResponse(c)
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleGet handles GET /clients/{id}
//
//	@Summary		Get client
//	@Tags			Clients
//	@Produce		json
//	@Param			id	path		int						true	"Client ID"
//	@Success		200	{object}	clientsdk.Client		"Client"
//	@Failure		400	{object}	clientsdk.ErrorResponse	"message"
//	@Failure		404	{object}	clientsdk.ErrorResponse	"message"
//	@Failure		500	{object}	clientsdk.ErrorResponse	"message"
//	@Router			/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	client, err := h.ClientService.GetClient(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Client not found")
		default:
			log.Error("failed to fetch client", "error", err, "client_id", id)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to fetch client")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// HandleCreate handles POST /clients
//
//	@Summary		Create client
//	@Description	Creates a client. name and email are required; phone is optional and an empty phone is stored as absent.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			request	body		clientsdk.CreateClientRequest	true	"Client fields"
//	@Success		201		{object}	clientsdk.Client				"Created client"
//	@Failure		400		{object}	clientsdk.ErrorResponse			"message, errors"
//	@Failure		500		{object}	clientsdk.ErrorResponse			"message"
//	@Router			/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	payload, err := schema.Decode(r.Body)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	fields, err := schema.ValidateCreate(payload)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	client, err := h.ClientService.CreateClient(ctx, fields)
	if err != nil {
		log.Error("failed to create client", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toClientResponse(client))
}

// HandleUpdate handles PUT /clients/{id}
//
//	@Summary		Update client
//	@Description	Applies only the supplied fields. An empty or null phone clears it. An empty body returns the client unchanged.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Client ID"
//	@Param			request	body		clientsdk.UpdateClientRequest	true	"Fields to change"
//	@Success		200		{object}	clientsdk.Client				"Updated client"
//	@Failure		400		{object}	clientsdk.ErrorResponse			"message, errors"
//	@Failure		404		{object}	clientsdk.ErrorResponse			"message"
//	@Failure		500		{object}	clientsdk.ErrorResponse			"message"
//	@Router			/clients/{id} [put].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	payload, err := schema.Decode(r.Body)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	patch, err := schema.ValidatePartialUpdate(payload)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	client, err := h.ClientService.UpdateClient(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Client not found")
		default:
			log.Error("failed to update client", "error", err, "client_id", id)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to update client")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toClientResponse(client))
}

// HandleDelete handles DELETE /clients/{id}
//
//	@Summary		Delete client
//	@Tags			Clients
//	@Produce		json
//	@Param			id	path	int	true	"Client ID"
//	@Success		204	"Client deleted"
//	@Failure		400	{object}	clientsdk.ErrorResponse	"message"
//	@Failure		404	{object}	clientsdk.ErrorResponse	"message"
//	@Failure		500	{object}	clientsdk.ErrorResponse	"message"
//	@Router			/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	err := h.ClientService.DeleteClient(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "Client not found")
		default:
			log.Error("failed to delete client", "error", err, "client_id", id)
			httpx.WriteError(w, http.StatusInternalServerError, "Failed to delete client")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
