package nodes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"property-hierarchy/internal/api/render"
	"property-hierarchy/internal/middleware"
	"property-hierarchy/internal/policy"
	nodesvc "property-hierarchy/internal/services/nodes"
)

// Handler exposes the node operations over HTTP.
type Handler struct {
	service *nodesvc.Service
}

// NewHandler creates a new node handler
func NewHandler(service *nodesvc.Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(c *gin.Context) (policy.Actor, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return policy.Actor{}, false
	}
	return policy.Actor{ID: claims.UserID, IsAdmin: claims.IsAdmin}, true
}

// Create handles POST /api/nodes
func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	var req NodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	input, err := req.ToCreateInput()
	if err != nil {
		render.Error(c, err)
		return
	}

	node, err := h.service.Create(c.Request.Context(), actor, input)
	if err != nil {
		render.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": NewResource(node)})
}

// Children handles GET /api/nodes/:id/children
func (h *Handler) Children(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	children, err := h.service.Children(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		render.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": NewResourceList(children)})
}

// ChangeParent handles PUT /api/nodes/:id/change-parent
func (h *Handler) ChangeParent(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	var req ChangeParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	node, err := h.service.ChangeParent(c.Request.Context(), actor, c.Param("id"), req.ParentID)
	if err != nil {
		render.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": NewResource(node)})
}
