package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

const (
	sessionAccountKey = "account_id"
	sessionFlashKey   = "flash"
)

// SessionAuthMiddleware authenticates requests from a signed session cookie
// and resolves the account (with profile) on every request, so role changes
// take effect without re-login.
type SessionAuthMiddleware struct {
	store       sessions.Store
	sessionName string
	repo        repositories.Repository
}

func NewSessionAuthMiddleware(secret []byte, sessionName string, repo repositories.Repository) *SessionAuthMiddleware {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionAuthMiddleware{
		store:       store,
		sessionName: sessionName,
		repo:        repo,
	}
}

// Login binds the account to a fresh session.
func (sam *SessionAuthMiddleware) Login(c *gin.Context, account *models.Account) error {
	session, _ := sam.store.Get(c.Request, sam.sessionName)
	session.Values[sessionAccountKey] = account.ID
	if err := session.Save(c.Request, c.Writer); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout expires the session cookie.
func (sam *SessionAuthMiddleware) Logout(c *gin.Context) error {
	session, _ := sam.store.Get(c.Request, sam.sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, sessionAccountKey)
	if err := session.Save(c.Request, c.Writer); err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	return nil
}

// AuthMiddleware rejects requests without a valid session-bound account.
func (sam *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := sam.resolveAccount(c)
		if !ok {
			if wantsHTML(c) {
				c.Redirect(http.StatusSeeOther, "/login")
				c.Abort()
				return
			}
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
			c.Abort()
			return
		}

		c.Set("account_id", account.ID)
		c.Set("account", account)
		c.Set("account_role", account.Role())
		c.Next()
	}
}

// OptionalAuthMiddleware attaches account info when a session exists but never
// rejects. Used on public pages that render differently when signed in.
func (sam *SessionAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if account, ok := sam.resolveAccount(c); ok {
			c.Set("account_id", account.ID)
			c.Set("account", account)
			c.Set("account_role", account.Role())
		}
		c.Next()
	}
}

// RequireRoleMiddleware checks the session role against the allowed set.
// Admins pass every check.
func (sam *SessionAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetRoleFromContext(c)
		if err != nil {
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "Role not resolved"})
			c.Abort()
			return
		}

		allowed := role == models.RoleAdmin
		for _, required := range requiredRoles {
			if role == required {
				allowed = true
				break
			}
		}

		if !allowed {
			if wantsHTML(c) {
				setFlashMessage(c, "You do not have access to that page.")
				c.Redirect(http.StatusSeeOther, "/profile")
				c.Abort()
				return
			}
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (sam *SessionAuthMiddleware) resolveAccount(c *gin.Context) (*models.Account, bool) {
	session, err := sam.store.Get(c.Request, sam.sessionName)
	if err != nil {
		return nil, false
	}
	rawID, ok := session.Values[sessionAccountKey]
	if !ok {
		return nil, false
	}
	accountID, ok := rawID.(uint)
	if !ok {
		return nil, false
	}

	account, err := sam.repo.Account().GetByID(c.Request.Context(), accountID)
	if err != nil || !account.IsActive {
		return nil, false
	}
	return account, true
}

// FlashMiddleware moves a queued flash message from the session into the
// request context, where handlers can render it once.
func (sam *SessionAuthMiddleware) FlashMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sam.store.Get(c.Request, sam.sessionName)
		if err == nil {
			if flashes := session.Flashes(sessionFlashKey); len(flashes) > 0 {
				_ = session.Save(c.Request, c.Writer)
				if msg, ok := flashes[0].(string); ok {
					c.Set("flash_message", msg)
				}
			}
		}

		c.Set("session_store", sam)
		c.Next()
	}
}

// setFlashMessage queues a one-shot message for the next rendered page.
func setFlashMessage(c *gin.Context, msg string) {
	raw, ok := c.Get("session_store")
	if !ok {
		return
	}
	sam, ok := raw.(*SessionAuthMiddleware)
	if !ok {
		return
	}
	session, err := sam.store.Get(c.Request, sam.sessionName)
	if err != nil {
		return
	}
	session.AddFlash(msg, sessionFlashKey)
	_ = session.Save(c.Request, c.Writer)
}

// ===== CONTEXT HELPERS =====

func GetAccountFromContext(c *gin.Context) (*models.Account, error) {
	raw, exists := c.Get("account")
	if !exists {
		return nil, fmt.Errorf("account not found in context")
	}
	account, ok := raw.(*models.Account)
	if !ok {
		return nil, fmt.Errorf("invalid account type in context")
	}
	return account, nil
}

func GetAccountIDFromContext(c *gin.Context) (uint, error) {
	raw, exists := c.Get("account_id")
	if !exists {
		return 0, fmt.Errorf("account ID not found in context")
	}
	id, ok := raw.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid account ID type in context")
	}
	return id, nil
}

func GetRoleFromContext(c *gin.Context) (models.UserRole, error) {
	raw, exists := c.Get("account_role")
	if !exists {
		return "", fmt.Errorf("account role not found in context")
	}
	role, ok := raw.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid account role type in context")
	}
	return role, nil
}
