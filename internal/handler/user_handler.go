package handler

import (
	"backend/internal/service"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserRegistrars are the alternate registration flows reachable through
// the /api/users endpoints: the generic register endpoint can create a
// calculator, and two passthrough endpoints create admins and calculators
// directly.
type UserRegistrars struct {
	CalculatorViaUsers service.AccountService
	Admin              service.AccountService
	Calculator         service.AccountService
}

type UserHandler struct {
	users      service.AccountService
	registrars UserRegistrars
}

// NewUserHandler sets up the routing dependencies for the /api/users endpoints
func NewUserHandler(users service.AccountService, registrars UserRegistrars) *UserHandler {
	return &UserHandler{users: users, registrars: registrars}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/api/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.GET("/verify", h.VerifyEmail)
		users.POST("/forgot-password", h.ForgotPassword)
		users.POST("/register-admin", h.RegisterAdmin)
		users.POST("/register-calculator", h.RegisterCalculator)
		users.GET("/:id", h.GetByID)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}

// Register handles POST /api/users/register
// @Summary      Register a user or calculator
// @Description  Creates an unverified account; the isCalculator flag selects the calculator kind
// @Tags         users
// @Accept       json
// @Produce      plain
// @Param        payload  body      service.RegisterRequest  true  "Registration payload"
// @Success      201      {string}  string
// @Failure      409      {string}  string
// @Failure      500      {string}  string
// @Router       /api/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request payload")
		return
	}

	if req.IsCalculator {
		if err := h.registrars.CalculatorViaUsers.Register(c.Request.Context(), req); err != nil {
			writeError(c, err)
			return
		}
		c.String(http.StatusCreated, "Calculator enregistré avec succès. Veuillez vérifier votre e-mail.")
		return
	}

	if err := h.users.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusCreated, "Utilisateur enregistré avec succès. Veuillez vérifier votre e-mail.")
}

// Login handles POST /api/users/login
// @Summary      Login user
// @Description  Authenticates by email and password, returning a bearer token, the numeric account id and the comma-joined scope string
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login credentials"
// @Success      200      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /api/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}

	res, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		writeMessageError(c, err)
		return
	}

	// The generic user endpoint additionally exposes the scope string.
	c.JSON(http.StatusOK, gin.H{
		"token":  res.Token,
		"userId": strconv.FormatUint(res.UserID, 10),
		"scope":  strings.Join(res.Scopes, ","),
	})
}

// VerifyEmail handles GET /api/users/verify?email=
// @Summary      Verify a user email
// @Tags         users
// @Produce      plain
// @Param        email  query     string  true  "Account email"
// @Success      200    {string}  string
// @Failure      404    {string}  string
// @Router       /api/users/verify [get]
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.String(http.StatusBadRequest, "Email requis.")
		return
	}

	if err := h.users.VerifyEmail(c.Request.Context(), email); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "E-mail vérifié avec succès.")
}

// ForgotPassword handles POST /api/users/forgot-password?email=
// @Summary      Reset a forgotten password
// @Description  Replaces the password with a random one and emails the plaintext
// @Tags         users
// @Produce      plain
// @Param        email  query     string  true  "Account email"
// @Success      200    {string}  string
// @Failure      404    {string}  string
// @Failure      500    {string}  string
// @Router       /api/users/forgot-password [post]
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.String(http.StatusBadRequest, "Email requis.")
		return
	}

	if err := h.users.ForgotPassword(c.Request.Context(), email); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Un e-mail avec votre nouveau mot de passe a été envoyé.")
}

// RegisterAdmin handles POST /api/users/register-admin
func (h *UserHandler) RegisterAdmin(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.registrars.Admin.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusCreated, "Admin enregistré avec succès.")
}

// RegisterCalculator handles POST /api/users/register-calculator
func (h *UserHandler) RegisterCalculator(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.registrars.Calculator.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusCreated, "Calculator enregistré avec succès.")
}

// GetByID handles GET /api/users/:id
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  model.Account
// @Failure      404  {string}  string
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	acct, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// Update handles PUT /api/users/:id
// @Summary      Update a user profile
// @Tags         users
// @Accept       json
// @Produce      plain
// @Param        id       path      int                    true  "Account ID"
// @Param        payload  body      service.UpdateRequest  true  "Profile changes"
// @Success      200      {string}  string
// @Failure      404      {string}  string
// @Failure      409      {string}  string
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.String(http.StatusNotFound, "Utilisateur non trouvé.")
		return
	}

	var req service.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.users.Update(c.Request.Context(), id, req); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Profil mis à jour avec succès.")
}

// Delete handles DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.String(http.StatusNotFound, "Utilisateur non trouvé.")
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Utilisateur supprimé avec succès.")
}
