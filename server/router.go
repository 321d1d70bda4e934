package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mx-social/domain/repository"
	httpHandler "mx-social/interfaces/http"
	"mx-social/interfaces/middleware"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	accountHandler httpHandler.IAccountHandler,
	postHandler httpHandler.IPostHandler,
	reportHandler httpHandler.IReportHandler,
	streamHandler gin.HandlerFunc,
	userRepository repository.IUser,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "https://localhost:4200", "http://localhost:4201", "https://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The provider calls back without a bearer token, the state nonce
	// carries the guard. The redirect route is public for the same reason:
	// the connect flow starts in a plain browser tab.
	router.GET("/account/:platform/redirect", accountHandler.Redirect)
	router.GET("/account/:platform/callback", accountHandler.Callback)

	api := router.Group("api")
	api.Use(middleware.Auth(userRepository))

	api.GET("/platforms", accountHandler.Platforms)

	api.GET("/accounts", accountHandler.List)
	api.GET("/accounts/:id", accountHandler.Get)
	api.DELETE("/accounts/:id", accountHandler.Disconnect)
	api.GET("/accounts/:id/activity", reportHandler.AccountActivity)

	api.POST("/posts", postHandler.Create)
	api.GET("/posts/:id", postHandler.Get)
	api.POST("/posts/:id/publish", postHandler.Publish)

	if streamHandler != nil {
		api.GET("/posts/stream", streamHandler)
	}

	return router
}
