// Package api assembles the HTTP surface: route table, auth middleware,
// and the handler packages.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apiauth "property-hierarchy/internal/api/auth"
	apinodes "property-hierarchy/internal/api/nodes"
	"property-hierarchy/internal/auth"
	"property-hierarchy/internal/middleware"
	"property-hierarchy/internal/registry"
	nodesvc "property-hierarchy/internal/services/nodes"
)

// Dependencies carries everything the router needs.
type Dependencies struct {
	Tokens *auth.TokenManager
	Users  *registry.UserRegistry
	Nodes  *nodesvc.Service
}

// NewRouter builds the gin engine with all routes wired.
func NewRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "property-hierarchy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	authHandler := apiauth.NewHandler(deps.Users, deps.Tokens)
	nodeHandler := apinodes.NewHandler(deps.Nodes)

	apiGroup := r.Group("/api")
	apiGroup.POST("/register", authHandler.Register)
	apiGroup.POST("/login", authHandler.Login)

	authed := apiGroup.Group("")
	authed.Use(middleware.JWTAuth(deps.Tokens))
	authed.POST("/logout", authHandler.Logout)
	authed.GET("/me", authHandler.Me)
	authed.POST("/nodes", nodeHandler.Create)
	authed.GET("/nodes/:id/children", nodeHandler.Children)
	authed.PUT("/nodes/:id/change-parent", nodeHandler.ChangeParent)

	return r
}
