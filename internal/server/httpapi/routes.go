package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/messagely/internal/api"
	"github.com/gin-gonic/gin"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog(), s.timeout())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	})

	for _, g := range []*gin.RouterGroup{&r.RouterGroup, r.Group("/auth")} {
		g.POST("/login", s.login)
		g.POST("/register", s.register)
	}

	authed := r.Group("/", s.requireLogin())

	authed.GET("/users", s.listUsers)
	authed.GET("/users/:username", s.requireCorrectUser(), s.getUser)
	authed.GET("/users/:username/to", s.requireCorrectUser(), s.messagesTo)
	authed.GET("/users/:username/from", s.messagesFrom)

	authed.POST("/messages", s.createMessage)
	authed.GET("/messages/:id", s.getMessage)
	authed.POST("/messages/:id/read", s.markRead)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody(http.StatusNotFound, "route not found"))
	})

	return r
}
