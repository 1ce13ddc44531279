package handler

import (
	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PolynomialHandler struct {
	polynomials service.PolynomialService
	issuer      *auth.TokenIssuer
}

// NewPolynomialHandler sets up the routing dependencies for the polynomial endpoints
func NewPolynomialHandler(polynomials service.PolynomialService, issuer *auth.TokenIssuer) *PolynomialHandler {
	return &PolynomialHandler{polynomials: polynomials, issuer: issuer}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *PolynomialHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.POST("/store-polynomial", h.Store)
		api.GET("/polynomials", middleware.RequireScope(h.issuer, "CALCULATOR"), h.List)
		api.GET("/polynomials/stats", middleware.RequireScope(h.issuer, "CALCULATOR"), h.Stats)
		api.GET("/polynomials/:id", h.GetByID)
		api.GET("/users/:id/polynomials", h.ListByUser)
	}
}

// Store handles POST /api/store-polynomial
// @Summary      Store a polynomial result
// @Description  Persists a computed polynomial for a user; storing an identical result again is a silent no-op
// @Tags         polynomials
// @Accept       json
// @Produce      plain
// @Param        payload  body      service.StorePolynomialRequest  true  "Polynomial payload"
// @Success      200      {string}  string
// @Failure      400      {string}  string
// @Failure      404      {string}  string
// @Failure      500      {string}  string
// @Router       /api/store-polynomial [post]
func (h *PolynomialHandler) Store(c *gin.Context) {
	var req service.StorePolynomialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	if err := h.polynomials.Store(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Polynomial stored successfully.")
}

// List handles GET /api/polynomials (CALCULATOR scope)
// @Summary      List all stored polynomials
// @Tags         polynomials
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  model.Polynomial
// @Router       /api/polynomials [get]
func (h *PolynomialHandler) List(c *gin.Context) {
	polys, err := h.polynomials.List(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, polys)
}

// Stats handles GET /api/polynomials/stats (CALCULATOR scope)
// @Summary      Aggregated polynomial statistics
// @Tags         polynomials
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.PolynomialStats}
// @Router       /api/polynomials/stats [get]
func (h *PolynomialHandler) Stats(c *gin.Context) {
	stats, err := h.polynomials.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to compute statistics"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetByID handles GET /api/polynomials/:id
func (h *PolynomialHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	p, err := h.polynomials.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListByUser handles GET /api/users/:id/polynomials
// @Summary      List one user's polynomials
// @Tags         polynomials
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {array}   model.PolynomialDTO
// @Success      204  "No polynomials stored for the user"
// @Failure      404  "Unknown user"
// @Router       /api/users/{id}/polynomials [get]
func (h *PolynomialHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	dtos, err := h.polynomials.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	if len(dtos) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dtos)
}
