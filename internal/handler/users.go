package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/feed-service/internal/dto"
	"github.com/BloggingApp/feed-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) usersPosts(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))

	var viewerID *uuid.UUID
	if user := h.getCachedUserFromRequest(c); user != nil {
		viewerID = &user.ID
	}

	feed, err := h.services.Feed.Author(c.Request.Context(), username, viewerID, pageFromQuery(c))
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *Handler) usersFollow(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	username := strings.TrimSpace(c.Param("username"))

	err := h.services.Follow.Follow(c.Request.Context(), user.ID, username)
	// Following yourself is a silent no-op, not an error the client has to
	// handle: the client just lands back on the profile it came from.
	if err != nil && err != service.ErrCannotFollowSelf {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}

func (h *Handler) usersUnfollow(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)
	username := strings.TrimSpace(c.Param("username"))

	if err := h.services.Follow.Unfollow(c.Request.Context(), user.ID, username); err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}
