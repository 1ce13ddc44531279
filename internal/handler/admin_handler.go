package handler

import (
	"backend/internal/auth"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	admins    service.AccountService
	directory repository.DirectoryRepository
	issuer    *auth.TokenIssuer
}

// NewAdminHandler sets up the routing dependencies for the /api/admins endpoints
func NewAdminHandler(admins service.AccountService, directory repository.DirectoryRepository, issuer *auth.TokenIssuer) *AdminHandler {
	return &AdminHandler{admins: admins, directory: directory, issuer: issuer}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admins := router.Group("/api/admins")
	{
		admins.POST("/register", h.Register)
		admins.POST("/login", h.Login)
		admins.GET("/verify", h.VerifyEmail)
		admins.GET("/accounts", middleware.RequireScope(h.issuer, "ADMIN"), h.ListAccounts)
		admins.GET("/:id", h.GetByID)
		admins.DELETE("/:id", h.Delete)
	}
}

// Register handles POST /api/admins/register
// @Summary      Register an admin
// @Tags         admins
// @Accept       json
// @Produce      plain
// @Param        payload  body      service.RegisterRequest  true  "Registration payload"
// @Success      201      {string}  string
// @Failure      409      {string}  string
// @Failure      500      {string}  string
// @Router       /api/admins/register [post]
func (h *AdminHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.admins.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusCreated, "Admin enregistré avec succès. Vérifiez votre email.")
}

// Login handles POST /api/admins/login
// @Summary      Login admin
// @Tags         admins
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login credentials"
// @Success      200      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /api/admins/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}

	res, err := h.admins.Login(c.Request.Context(), req)
	if err != nil {
		writeMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  res.Token,
		"userId": strconv.FormatUint(res.UserID, 10),
	})
}

// VerifyEmail handles GET /api/admins/verify?email=
func (h *AdminHandler) VerifyEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.String(http.StatusBadRequest, "Email requis.")
		return
	}

	if err := h.admins.VerifyEmail(c.Request.Context(), email); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "E-mail vérifié avec succès.")
}

// ListAccounts handles GET /api/admins/accounts, the paginated overview of
// every account across the three kinds.
// @Summary      Unified account overview
// @Tags         admins
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /api/admins/accounts [get]
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	params := pagination.Parse(c)

	rows, total, err := h.directory.ListAll(c.Request.Context(), params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch accounts"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"accounts": rows,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetByID handles GET /api/admins/:id
func (h *AdminHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	acct, err := h.admins.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// Delete handles DELETE /api/admins/:id
func (h *AdminHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.String(http.StatusNotFound, "Administrateur non trouvé.")
		return
	}

	if err := h.admins.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Administrateur supprimé avec succès.")
}
