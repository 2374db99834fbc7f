package bot

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"rdt_go/pkg/reddit"
)

// SetupRoutes регистрирует маршруты ботов. Каждый бот адресуется
// либо по имени (/name/:name), либо по ID строки (/id/:id).
func SetupRoutes(r *gin.RouterGroup, store Store, transport reddit.Transport, callbacks reddit.Callbacks) {
	handler := NewHandler(store, transport, callbacks)
	r.POST("", handler.Enroll)

	for _, g := range []*gin.RouterGroup{r.Group("/name/:name"), r.Group("/id/:id")} {
		g.GET("/session", handler.Session)
		g.POST("/login", handler.Login)
		g.POST("/vote", handler.Vote)
		g.POST("/comment", handler.Comment)
		g.POST("/report", handler.Report)
		g.GET("/listing", handler.Listing)
		g.PUT("/data", handler.SetData)
		g.PUT("/callback", handler.BindCallback)
		g.POST("/save", handler.Save)
		g.POST("/run", handler.Run)
	}

	log.Printf("[ROUTER] Bot routes registered")
}
