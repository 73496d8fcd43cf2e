package handler

import (
	"context"
	"os"
	"strconv"

	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/BloggingApp/feed-service/internal/service"
	"github.com/BloggingApp/feed-service/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

type Handler struct {
	services *service.Service
}

func New(services *service.Service) *Handler {
	return &Handler{
		services: services,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{viper.GetString("client.origin")},
		AllowMethods: []string{"POST", "GET", "PATCH", "DELETE"},
		AllowCredentials: true,
	}))

	v1 := r.Group("/api/v1")
	{
		feed := v1.Group("/feed")
		{
			feed.GET("", h.feedGlobal)
			feed.GET("/following", h.authMiddleware, h.feedFollowing)
		}

		groups := v1.Group("/groups")
		{
			groups.GET("", h.groupsGet)
			groups.POST("", h.moderatorMiddleware, h.groupsCreate)
			groups.GET("/:slug/posts", h.groupsPosts)
		}

		users := v1.Group("/users/:username")
		{
			users.GET("/posts", h.notRequiredAuthMiddleware, h.usersPosts)
			users.POST("/follow", h.authMiddleware, h.usersFollow)
			users.DELETE("/follow", h.authMiddleware, h.usersUnfollow)
		}

		posts := v1.Group("/posts")
		{
			posts.POST("", h.authMiddleware, h.postsCreate)
			posts.POST("/uploadImage", h.authMiddleware, h.postsUploadImage)
			posts.PATCH("/edit", h.authMiddleware, h.postsEdit)

			post := posts.Group("/:postID")
			{
				post.GET("", h.postsGetByID)
				post.GET("/comments", h.commentsGet)
				post.POST("/comments", h.authMiddleware, h.commentsCreate)
			}
		}
	}

	return r
}

func (h *Handler) getUserDataFromAccessToken(ctx context.Context, accessToken string) (*model.CachedUser, error) {
	claims, err := utils.DecodeJWT(accessToken, []byte(os.Getenv("ACCESS_SECRET")))
	if err != nil {
		return nil, err
	}

	idString, ok := claims["id"].(string)
	if !ok {
		return nil, errNotAuthorized
	}
	id, err := uuid.Parse(idString)
	if err != nil {
		return nil, err
	}

	user, err := h.services.UserCache.CreateOrGet(ctx, id, accessToken)
	if err != nil {
		return nil, err
	}

	// Profile renames propagate through refreshed tokens: when the token's
	// username disagrees with the projection, the projection is stale.
	if username, ok := claims["username"].(string); ok && username != "" && username != user.Username {
		if err := h.services.UserCache.Update(ctx, id, map[string]interface{}{"username": username}); err == nil {
			user.Username = username
		}
	}

	return user, nil
}

func (h *Handler) getCachedUserFromRequest(c *gin.Context) *model.CachedUser {
	userReq, _ := c.Get("cached-user")

	user, ok := userReq.(model.CachedUser)
	if !ok {
		return nil
	}

	return &user
}

// pageFromQuery never fails: garbage or absent ?page= degrades to page 1, and
// out-of-range values are clamped downstream by the pagination engine.
func pageFromQuery(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		return 1
	}
	return page
}
