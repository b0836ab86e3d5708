package handlers

import (
	"frodi/internal/services"

	"github.com/gin-gonic/gin"
)

// Routes holds everything the HTTP layer dispatches to.
type Routes struct {
	Tokens         *services.TokenValidator
	Upload         *services.Pipeline
	Memo           *services.Pipeline
	Review         *services.Pipeline
	Chat           *services.ChatService
	MaxUploadBytes int64
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// NewRouter builds the engine with pages, upload routes and the assistant.
func NewRouter(routes Routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.SetHTMLTemplate(loadTemplates())
	router.StaticFS("/static", staticFS())

	router.GET("/health", Health)
	router.GET("/", Page("index.html"))
	router.GET("/minnisblad", Page("minnisblad.html"))
	router.GET("/minnisblad-adstod", Page("minnisblad-adstod.html"))
	router.GET("/adstod", Page("adstod.html"))

	uploads := []struct {
		path     string
		pipeline *services.Pipeline
		prefix   string
	}{
		{"/upload/", routes.Upload, "Frodi_"},
		{"/minnisblad/upload/", routes.Memo, "Frodi_minnisblad_"},
		{"/minnisblad-adstod/upload/", routes.Review, "Frodi_adstod_"},
	}
	for _, u := range uploads {
		if u.pipeline == nil {
			continue
		}
		chain := []gin.HandlerFunc{}
		if u.pipeline.Config().Protected {
			chain = append(chain, AuthMiddleware(routes.Tokens))
		}
		chain = append(chain, NewMemoHandler(u.pipeline, routes.MaxUploadBytes, u.prefix).Upload)
		router.POST(u.path, chain...)
	}

	if routes.Chat != nil {
		router.POST("/adstod/start", NewChatHandler(routes.Chat).Start)
	}

	return router
}
