package handler

import (
	"backend/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CalculatorHandler struct {
	calculators service.AccountService
}

// NewCalculatorHandler sets up the routing dependencies for the /api/calculators endpoints
func NewCalculatorHandler(calculators service.AccountService) *CalculatorHandler {
	return &CalculatorHandler{calculators: calculators}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *CalculatorHandler) RegisterRoutes(router *gin.RouterGroup) {
	calculators := router.Group("/api/calculators")
	{
		calculators.POST("/register", h.Register)
		calculators.POST("/login", h.Login)
		calculators.GET("/verify", h.VerifyEmail)
		calculators.POST("/forgot-password", h.ForgotPassword)
		calculators.GET("", h.List)
		calculators.GET("/:id", h.GetByID)
		calculators.PUT("/:id", h.Update)
		calculators.DELETE("/:id", h.Delete)
	}
}

// Register handles POST /api/calculators/register
// @Summary      Register a calculator
// @Description  Creates a calculator account. Unlike every other registration path this one marks the account verified immediately.
// @Tags         calculators
// @Accept       json
// @Produce      plain
// @Param        payload  body      service.RegisterRequest  true  "Registration payload"
// @Success      201      {string}  string
// @Failure      409      {string}  string
// @Failure      500      {string}  string
// @Router       /api/calculators/register [post]
func (h *CalculatorHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.calculators.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusCreated, "Calculator enregistré avec succès. Veuillez vérifier votre e-mail.")
}

// Login handles POST /api/calculators/login
// @Summary      Login calculator
// @Tags         calculators
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login credentials"
// @Success      200      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /api/calculators/login [post]
func (h *CalculatorHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}

	res, err := h.calculators.Login(c.Request.Context(), req)
	if err != nil {
		writeMessageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  res.Token,
		"userId": strconv.FormatUint(res.UserID, 10),
	})
}

// VerifyEmail handles GET /api/calculators/verify?email=
func (h *CalculatorHandler) VerifyEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.String(http.StatusBadRequest, "Email requis.")
		return
	}

	if err := h.calculators.VerifyEmail(c.Request.Context(), email); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "E-mail vérifié avec succès.")
}

// ForgotPassword handles POST /api/calculators/forgot-password?email=
func (h *CalculatorHandler) ForgotPassword(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.String(http.StatusBadRequest, "Email requis.")
		return
	}

	if err := h.calculators.ForgotPassword(c.Request.Context(), email); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Un e-mail avec votre nouveau mot de passe a été envoyé.")
}

// List handles GET /api/calculators
// @Summary      List calculators
// @Tags         calculators
// @Produce      json
// @Success      200  {array}  model.Account
// @Router       /api/calculators [get]
func (h *CalculatorHandler) List(c *gin.Context) {
	calculators, err := h.calculators.List(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, calculators)
}

// GetByID handles GET /api/calculators/:id
func (h *CalculatorHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	acct, err := h.calculators.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// Update handles PUT /api/calculators/:id
func (h *CalculatorHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.String(http.StatusNotFound, "Calculator non trouvé.")
		return
	}

	var req service.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.calculators.Update(c.Request.Context(), id, req); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Calculator mis à jour avec succès.")
}

// Delete handles DELETE /api/calculators/:id
func (h *CalculatorHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.String(http.StatusNotFound, "Calculator non trouvé.")
		return
	}

	if err := h.calculators.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Calculator supprimé avec succès.")
}
