package middleware

import (
	"context"
	"net/http"
	"net/url"

	"hospital-admission/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Cookies carrying the staff session for the HTML pages
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// LoginRoute is where unauthenticated page requests are sent
const LoginRoute = "/login"

// AccessRefresher exchanges a refresh token for a new access token
type AccessRefresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// SetAccessCookie stores an access token for the HTML pages. SameSite=Strict
// keeps the cookie off cross-site requests.
func SetAccessCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, token, maxAge, "/", "", secure, true)
}

// CookieAuth guards server-rendered pages with the access token cookie set at
// login. An expired access token is replaced using the refresh token cookie
// when refresher is non-nil. Unsafe methods must come from the same origin.
// Unauthenticated GETs are redirected to the login page; other methods get 401.
func CookieAuth(refresher AccessRefresher, secure bool, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !safeMethod(c.Request.Method) && !sameOrigin(c.Request) {
			c.String(http.StatusForbidden, "Cross-origin request refused")
			c.Abort()
			return
		}

		claims, ok := cookieClaims(c, refresher, secure)
		if !ok {
			if c.Request.Method == http.MethodGet {
				c.Redirect(http.StatusSeeOther, LoginRoute+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			} else {
				c.String(http.StatusUnauthorized, "Sign in required")
			}
			c.Abort()
			return
		}

		if !hasRole(claims.Role, roles) {
			c.String(http.StatusForbidden, "Insufficient role for this page")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func cookieClaims(c *gin.Context, refresher AccessRefresher, secure bool) (*utils.Claims, bool) {
	if token, err := c.Cookie(AccessTokenCookie); err == nil {
		if claims, err := utils.ValidateAccessToken(token); err == nil {
			return claims, true
		}
	}

	if refresher == nil {
		return nil, false
	}
	refreshToken, err := c.Cookie(RefreshTokenCookie)
	if err != nil {
		return nil, false
	}
	token, err := refresher.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		return nil, false
	}
	claims, err := utils.ValidateAccessToken(token)
	if err != nil {
		return nil, false
	}

	SetAccessCookie(c, token, int(utils.GetAccessTokenExpiry().Seconds()), secure)
	return claims, true
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// sameOrigin compares the Origin (or Referer) host with the request host.
// Requests carrying neither header are not browser cross-site posts and pass.
func sameOrigin(r *http.Request) bool {
	source := r.Header.Get("Origin")
	if source == "" {
		source = r.Header.Get("Referer")
	}
	if source == "" {
		return true
	}
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

func hasRole(role string, roles []string) bool {
	if len(roles) == 0 {
		return role != ""
	}
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	return false
}
