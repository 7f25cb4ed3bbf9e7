package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/iam/authn"
	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/server"
	"github.com/skillsenselab/iam/validation"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=128"`
	LastName  string `json:"last_name" validate:"max=128"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	tokens, err := h.provider.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, tokens)
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	tokens, err := h.provider.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, tokens)
}

func (h *Handler) clientCredentialsToken(c *gin.Context) {
	token, err := h.provider.ClientCredentialsToken(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"access_token": token})
}

// registerWithProvider creates the user with the identity provider.
// The provider reports plain success or failure; a failed registration
// maps to 400 without provider detail in the response.
func (h *Handler) registerWithProvider(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ok := h.provider.RegisterUser(c.Request.Context(), authn.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if !ok {
		server.RespondWithError(c, errors.BadRequest("User registration failed."))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"registered": true})
}
