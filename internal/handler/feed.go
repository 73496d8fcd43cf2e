package handler

import (
	"net/http"

	"github.com/BloggingApp/feed-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) feedGlobal(c *gin.Context) {
	page, err := h.services.Feed.Global(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) feedFollowing(c *gin.Context) {
	user := h.getCachedUserFromRequest(c)

	page, err := h.services.Feed.Following(c.Request.Context(), user.ID, pageFromQuery(c))
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, page)
}
