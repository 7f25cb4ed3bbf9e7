package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/iam/errors"
	"github.com/skillsenselab/iam/server"
	"github.com/skillsenselab/iam/service"
	"github.com/skillsenselab/iam/store"
)

// userResponse is the public view of a user. The password hash never
// leaves the service.
type userResponse struct {
	ID        int64     `json:"id,string"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type statusRequest struct {
	Disabled bool `json:"disabled"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Disabled:  u.Disabled,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.InvalidInput("id", "must be a numeric identifier")
	}
	return id, nil
}

func (h *Handler) createUser(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}

	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, toUserResponse(user))
}

func (h *Handler) getUser(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toUserResponse(user))
}

// findUser looks a user up by email or username query parameter.
func (h *Handler) findUser(c *gin.Context) {
	var (
		user *store.User
		err  error
	)
	switch {
	case c.Query("email") != "":
		user, err = h.users.GetByEmail(c.Request.Context(), c.Query("email"))
	case c.Query("username") != "":
		user, err = h.users.GetByUsername(c.Request.Context(), c.Query("username"))
	default:
		err = errors.BadRequest("Provide an email or username query parameter.")
	}
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toUserResponse(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req service.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toUserResponse(user))
}

func (h *Handler) changePassword(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req service.ChangePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), id, req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) setUserStatus(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}

	user, err := h.users.SetDisabled(c.Request.Context(), id, req.Disabled)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, toUserResponse(user))
}

func (h *Handler) getNotifications(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	settings, err := h.notifications.ForUser(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, settings)
}

func (h *Handler) updateNotifications(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	var req service.UpdateNotificationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.BadRequest("Request body is not valid JSON."))
		return
	}

	setting, err := h.notifications.Update(c.Request.Context(), id, req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, setting)
}
