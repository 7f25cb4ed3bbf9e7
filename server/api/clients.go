package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/server"
	"github.com/skillsenselab/iam/service"
	"github.com/skillsenselab/iam/store"
	"github.com/skillsenselab/iam/validation"
)

// clientResponse is the public view of a client. The secret hash never
// leaves the service; the raw secret appears only in registration and
// rotation responses.
type clientResponse struct {
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type registeredClientResponse struct {
	clientResponse
	Secret string `json:"secret"`
}

type validateClientRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	Secret   string `json:"secret" validate:"required"`
}

func toClientResponse(cl *store.Client) clientResponse {
	return clientResponse{
		ClientID:  cl.ClientID,
		Name:      cl.Name,
		Disabled:  cl.Disabled,
		CreatedAt: cl.CreatedAt,
		UpdatedAt: cl.UpdatedAt,
	}
}

func (h *Handler) registerClient(c *gin.Context) {
	var req service.RegisterClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}

	reg, err := h.clients.Register(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, registeredClientResponse{
		clientResponse: toClientResponse(reg.Client),
		Secret:         reg.Secret,
	})
}

func (h *Handler) listClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	out := make([]clientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, toClientResponse(&clients[i]))
	}
	server.RespondOK(c, out)
}

func (h *Handler) getClient(c *gin.Context) {
	client, err := h.clients.Get(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toClientResponse(client))
}

// validateClient answers with a bare validity flag. Unknown client IDs
// and wrong secrets produce the same response.
func (h *Handler) validateClient(c *gin.Context) {
	var req validateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	valid, err := h.clients.ValidateCredentials(c.Request.Context(), req.ClientID, req.Secret)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"valid": valid})
}

func (h *Handler) updateClient(c *gin.Context) {
	var req service.RegisterClientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}

	client, err := h.clients.Update(c.Request.Context(), c.Param("clientId"), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toClientResponse(client))
}

func (h *Handler) setClientStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}

	client, err := h.clients.SetDisabled(c.Request.Context(), c.Param("clientId"), req.Disabled)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toClientResponse(client))
}

func (h *Handler) regenerateClientSecret(c *gin.Context) {
	reg, err := h.clients.RegenerateSecret(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, registeredClientResponse{
		clientResponse: toClientResponse(reg.Client),
		Secret:         reg.Secret,
	})
}
