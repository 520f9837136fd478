package account

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
)

const (
	LoginPath     = "/login"
	LogoutPath    = "/logout"
	dashboardPath = "/dashboard"
)

type loginForm struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RedirectTo string `json:"redirectTo" form:"redirectTo"`
}

type Handler struct {
	svc      *Service
	sessions *auth.SessionManager
}

func NewHandler(svc *Service, sessions *auth.SessionManager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes mounts login and logout. loginMW wraps only the login
// route, typically with a stricter rate limit.
func (h *Handler) RegisterRoutes(e *echo.Echo, loginMW ...echo.MiddlewareFunc) {
	e.POST(LoginPath, h.Login, loginMW...)
	e.POST(LogoutPath, h.Logout)
}

func (h *Handler) Login(c echo.Context) error {
	var f loginForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	sess, msg, err := h.svc.Authenticate(c.Request().Context(), f.Email, f.Password)
	if err != nil {
		return err
	}
	if msg != "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": msg})
	}

	token, exp, err := h.sessions.Issue(sess)
	if err != nil {
		return err
	}
	h.sessions.SetCookie(c, token, exp)
	return c.Redirect(http.StatusSeeOther, safeRedirect(f.RedirectTo))
}

func (h *Handler) Logout(c echo.Context) error {
	h.sessions.ClearCookie(c)
	return c.Redirect(http.StatusSeeOther, LoginPath)
}

// safeRedirect keeps post-login navigation inside the dashboard.
func safeRedirect(to string) string {
	if to == dashboardPath || strings.HasPrefix(to, dashboardPath+"/") {
		return to
	}
	return dashboardPath
}
