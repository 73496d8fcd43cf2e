package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/BloggingApp/feed-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) groupsGet(c *gin.Context) {
	limit, err0 := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, err1 := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err0 != nil || err1 != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, errLimitAndOffsetMustBeInt.Error()))
		return
	}

	groups, err := h.services.Group.FindAll(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, groups)
}

func (h *Handler) groupsCreate(c *gin.Context) {
	var input dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	createdGroup, err := h.services.Group.Create(c.Request.Context(), input)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, *createdGroup)
}

func (h *Handler) groupsPosts(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	feed, err := h.services.Feed.Group(c.Request.Context(), slug, pageFromQuery(c))
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, feed)
}
