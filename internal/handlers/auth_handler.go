package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	session     *SessionAuthMiddleware
	mediaRoot   string
}

func NewAuthHandler(authService services.AuthService, session *SessionAuthMiddleware, mediaRoot string, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		session:     session,
		mediaRoot:   mediaRoot,
	}
}

// Register creates a new account
// @Summary Register account
// @Description Creates the account, its profile and (for teachers) the instructor record
// @Tags auth
// @Accept json
// @Produce json
// @Param account body services.RegisterRequest true "Registration data"
// @Success 201 {object} services.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	account, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if wantsHTML(c) {
		setFlashMessage(c, "Account created, you can sign in now.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.JSON(http.StatusCreated, services.AccountResponse{Account: account, Role: account.Role()})
}

// Login verifies credentials and opens a session
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginRequest true "Username or email plus password"
// @Success 200 {object} services.AccountResponse
// @Failure 401 {object} ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	account, err := h.authService.Authenticate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.session.Login(c, account); err != nil {
		h.LogError(c, err, "failed to open session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
		return
	}

	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, dashboardPathFor(account.Role()))
		return
	}
	c.JSON(http.StatusOK, services.AccountResponse{Account: account, Role: account.Role()})
}

// Logout closes the session
// @Summary Log out
// @Tags auth
// @Success 204
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.session.Logout(c); err != nil {
		h.LogError(c, err, "failed to close session")
	}
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Status(http.StatusNoContent)
}

// Profile returns the signed-in account with its profile
// @Summary Own profile
// @Tags auth
// @Produce json
// @Success 200 {object} services.AccountResponse
// @Failure 401 {object} ErrorResponse
// @Router /profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.authService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if msg, ok := c.Get("flash_message"); ok {
		c.JSON(http.StatusOK, SuccessResponse{Message: msg.(string), Data: resp})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateProfile edits the signed-in account's profile, with optional avatar upload
// @Summary Edit own profile
// @Tags auth
// @Accept mpfd
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Router /profile/edit [post]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	var req services.ProfileUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if file, err := c.FormFile("avatar"); err == nil {
		path, err := h.saveAvatar(c, file.Filename, accountID)
		if err != nil {
			h.LogError(c, err, "failed to store avatar")
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Could not store avatar", Details: err.Error()})
			return
		}
		req.AvatarPath = &path
	}

	profile, err := h.authService.UpdateProfile(c.Request.Context(), accountID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if wantsHTML(c) {
		setFlashMessage(c, "Profile updated.")
		c.Redirect(http.StatusSeeOther, "/profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// saveAvatar stores the upload under the media root with a random name and
// returns the relative path kept on the profile.
func (h *AuthHandler) saveAvatar(c *gin.Context, filename string, accountID uint) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return "", fmt.Errorf("unsupported avatar format %q", ext)
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return "", err
	}

	relative := filepath.Join("avatars", fmt.Sprintf("%d-%s%s", accountID, uuid.New().String(), ext))
	if err := c.SaveUploadedFile(file, filepath.Join(h.mediaRoot, relative)); err != nil {
		return "", fmt.Errorf("failed to save avatar: %w", err)
	}
	return relative, nil
}

func dashboardPathFor(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return "/dashboard/admin"
	case models.RoleTeacher:
		return "/dashboard/teacher"
	default:
		return "/dashboard/student"
	}
}
