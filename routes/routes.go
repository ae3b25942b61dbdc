package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/podcastr-backend/controllers"
	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/services"
	"github.com/vnkhanh/podcastr-backend/utils"
	"github.com/vnkhanh/podcastr-backend/ws"
)

// Deps gom các thành phần đã khởi tạo ở main để đăng ký route.
type Deps struct {
	DB         *gorm.DB
	Podcasts   *services.PodcastService
	Users      *services.UserService
	Generation *services.GenerationService
	Hub        *ws.Hub
	Verifier   utils.Verifier
	Google     controllers.IDTokenVerifier
	Tokens     controllers.TokenIssuer
	Limiter    *middleware.RateLimiter
}

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	r.Use(middleware.AuthGuard(d.Verifier, middleware.MustRouteMatcher(middleware.PublicRoutes...)))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Podcastr server is running")
	})
	r.GET("/ping", controllers.Ping)
	r.GET("/health", controllers.HealthCheck(d.DB, d.Hub))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/google", controllers.GoogleLogin(d.Google, d.Tokens, d.Users))
	}

	podcasts := api.Group("/podcasts")
	{
		podcasts.GET("", controllers.GetTrendingPodcasts(d.Podcasts))
		podcasts.GET("/search", controllers.SearchPodcasts(d.Podcasts))
		podcasts.GET("/category/:category", controllers.GetPodcastsByCategory(d.Podcasts))
		podcasts.GET("/author/:authorId", controllers.GetPodcastsByAuthor(d.Podcasts))
		podcasts.GET("/user/:userId", controllers.GetPodcastsByUser(d.Podcasts))
		podcasts.GET("/:id", controllers.GetPodcastByID(d.Podcasts))
		podcasts.GET("/:id/similar", controllers.GetSimilarPodcasts(d.Podcasts))
		podcasts.POST("/:id/views", controllers.IncrementPodcastViews(d.Podcasts))

		podcasts.POST("", controllers.CreatePodcast(d.Podcasts))
		podcasts.PATCH("/:id", controllers.UpdatePodcast(d.Podcasts))
		podcasts.DELETE("/:id", controllers.DeletePodcast(d.Podcasts))
	}

	api.GET("/discover", controllers.Discover(d.Podcasts))
	api.GET("/categories", controllers.GetCategories)
	api.GET("/voices", controllers.GetVoices)

	generate := api.Group("/generate")
	{
		generate.GET("/status", controllers.GenerationStatus(d.Generation))
		if d.Limiter != nil {
			generate.Use(d.Limiter.Middleware())
		}
		generate.POST("/audio", controllers.GenerateAudio(d.Generation))
		generate.POST("/thumbnail", controllers.GenerateThumbnail(d.Generation))
		generate.POST("/prompt", controllers.SuggestPrompt(d.Generation))
		generate.POST("/document", controllers.PromptFromDocument(d.Generation))
	}

	files := api.Group("/files")
	{
		files.POST("/upload-url", controllers.CreateUploadURL(d.Generation))
		files.POST("/url", controllers.ResolveFileURL(d.Generation))
	}

	users := api.Group("/users")
	{
		users.POST("/sync", controllers.SyncUser(d.Users))
		users.GET("/me", controllers.GetMe(d.Users))
	}

	podcasters := api.Group("/podcasters")
	{
		podcasters.GET("", controllers.GetTopPodcasters(d.Users))
		podcasters.GET("/:externalId", controllers.GetPodcaster(d.Users))
		podcasters.GET("/:externalId/feed", controllers.GetPodcasterFeed(d.Users))
	}
	api.GET("/profile/:externalId", controllers.GetProfile(d.Users))

	// WebSocket tự xác thực qua ?token=
	r.GET("/ws/user", d.Hub.HandleUserWebSocket(d.Verifier))
	r.GET("/ws/global", d.Hub.HandleGlobalWebSocket(d.Verifier))

	return r
}
