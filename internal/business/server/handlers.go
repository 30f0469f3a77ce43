package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	slogctx "github.com/veqryn/slog-context"

	"github.com/flipsidefm/flipside/internal/config"
	"github.com/flipsidefm/flipside/internal/favorites"
	"github.com/flipsidefm/flipside/internal/serviceerr"
	"github.com/flipsidefm/flipside/internal/spotify"
)

// CSRFHeader carries the token issued at login; every mutating route
// requires it.
const CSRFHeader = "X-CSRF-Token"

// csrfCookieSuffix names the JS-readable cookie holding the CSRF token,
// derived from the session cookie name.
const csrfCookieSuffix = "_csrf"

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

type handler struct {
	cfg  *config.Config
	deps Dependencies
}

func newRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	h := &handler{cfg: cfg, deps: deps}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.Application.Name))
	r.Use(requestTelemetry(cfg))

	r.GET("/healthz", h.health)

	auth := r.Group("/auth")
	auth.GET("/spotify/start", h.startLogin)
	auth.GET("/spotify/callback", h.finishLogin)
	auth.POST("/logout", h.requireCSRF, h.logout)

	r.GET("/me", h.currentUser)
	r.GET("/spotify/token", h.accessToken)

	r.GET("/search", h.search)
	r.GET("/albums/:id", h.album)

	playerGroup := r.Group("/player", h.requireCSRF)
	playerGroup.PUT("/play", h.play)
	playerGroup.PUT("/pause", h.pause)
	playerGroup.POST("/next", h.next)
	playerGroup.POST("/previous", h.previous)

	favGroup := r.Group("/favorites")
	favGroup.GET("", h.listFavorites)
	favGroup.POST("", h.requireCSRF, h.addFavorite)
	favGroup.DELETE("/:albumID", h.requireCSRF, h.removeFavorite)

	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) startLogin(c *gin.Context) {
	authURL, err := h.deps.SessionManager.StartLogin(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// finishLogin lands the browser back on the frontend whatever happened: on
// success with a fresh session cookie, on failure with an error query the
// frontend can present.
func (h *handler) finishLogin(c *gin.Context) {
	ctx := c.Request.Context()

	if providerErr := c.Query("error"); providerErr != "" {
		slogctx.Warn(ctx, "Provider denied the authorization request", "error", providerErr)
		h.redirectWithError(c, providerErr)

		return
	}

	result, err := h.deps.SessionManager.FinishLogin(ctx, c.Query("code"), c.Query("state"))
	if err != nil {
		slogctx.Error(ctx, "Login failed", "error", err)
		h.redirectWithError(c, string(errorCode(err)))

		return
	}

	sessionCookie, err := h.deps.SessionManager.MakeSessionCookie(ctx, result.SessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	http.SetCookie(c.Writer, sessionCookie)

	// The frontend reads the CSRF token from this cookie and echoes it in
	// the CSRFHeader, so it must stay accessible to scripts.
	csrfCookie := *sessionCookie
	csrfCookie.Name = sessionCookie.Name + csrfCookieSuffix
	csrfCookie.Value = result.CSRFToken
	csrfCookie.HttpOnly = false
	http.SetCookie(c.Writer, &csrfCookie)

	c.Redirect(http.StatusFound, h.deps.SessionManager.FrontendURL())
}

func (h *handler) redirectWithError(c *gin.Context, code string) {
	frontendURL := h.deps.SessionManager.FrontendURL()

	u, err := url.Parse(frontendURL)
	if err != nil {
		c.Redirect(http.StatusFound, frontendURL)
		return
	}

	q := u.Query()
	q.Set("error", code)
	u.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, u.String())
}

func (h *handler) logout(c *gin.Context) {
	if err := h.deps.SessionManager.Logout(c.Request.Context(), h.sessionID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	// The expiring cookies must carry the same attributes as the ones set at
	// login, or the browser treats them as different cookies.
	expired := h.cfg.Session.CookieTemplate.ToCookie("")
	expired.MaxAge = -1
	http.SetCookie(c.Writer, expired)

	expiredCSRF := *expired
	expiredCSRF.Name = expired.Name + csrfCookieSuffix
	expiredCSRF.HttpOnly = false
	http.SetCookie(c.Writer, &expiredCSRF)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) currentUser(c *gin.Context) {
	profile, err := h.deps.SessionManager.CurrentUser(c.Request.Context(), h.sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// accessToken hands the raw token to the in-browser playback SDK. The same
// refresh policy as /me applies.
func (h *handler) accessToken(c *gin.Context) {
	token, err := h.deps.SessionManager.EnsureValidAccessToken(c.Request.Context(), h.sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

func (h *handler) search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.writeError(c, &serviceerr.Error{Err: serviceerr.CodeInvalidRequest, Description: "q must not be empty"})
		return
	}

	var types []string
	for _, item := range strings.Split(c.DefaultQuery("type", "album,artist,track"), ",") {
		if item = strings.TrimSpace(item); item != "" {
			types = append(types, item)
		}
	}
	if len(types) == 0 {
		h.writeError(c, &serviceerr.Error{Err: serviceerr.CodeInvalidRequest, Description: "type must name at least one item type"})
		return
	}

	limit := defaultSearchLimit
	if rawLimit := c.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 || parsed > maxSearchLimit {
			h.writeError(c, &serviceerr.Error{Err: serviceerr.CodeInvalidRequest, Description: "limit must be an integer between 1 and 50"})
			return
		}

		limit = parsed
	}

	result, err := h.deps.Player.Search(c.Request.Context(), h.sessionID(c), query, types, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

func (h *handler) album(c *gin.Context) {
	result, err := h.deps.Player.Album(c.Request.Context(), h.sessionID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

type playRequest struct {
	DeviceID string `json:"deviceId"`
}

func (h *handler) play(c *gin.Context) {
	var req playRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeError(c, &serviceerr.Error{Err: serviceerr.CodeInvalidRequest, Description: "malformed request body"})
			return
		}
	}

	if err := h.deps.Player.Play(c.Request.Context(), h.sessionID(c), req.DeviceID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) pause(c *gin.Context) {
	if err := h.deps.Player.Pause(c.Request.Context(), h.sessionID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) next(c *gin.Context) {
	if err := h.deps.Player.Next(c.Request.Context(), h.sessionID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) previous(c *gin.Context) {
	if err := h.deps.Player.Previous(c.Request.Context(), h.sessionID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) listFavorites(c *gin.Context) {
	userID, err := h.deps.SessionManager.SessionUserID(c.Request.Context(), h.sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	crate, err := h.deps.Favorites.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if crate == nil {
		crate = []favorites.Favorite{}
	}

	c.JSON(http.StatusOK, gin.H{"items": crate})
}

type addFavoriteRequest struct {
	AlbumID  string `json:"albumId"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	CoverURL string `json:"coverUrl"`
}

func (h *handler) addFavorite(c *gin.Context) {
	userID, err := h.deps.SessionManager.SessionUserID(c.Request.Context(), h.sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, &serviceerr.Error{Err: serviceerr.CodeInvalidRequest, Description: "malformed request body"})
		return
	}

	favorite := favorites.Favorite{
		UserID:   userID,
		AlbumID:  req.AlbumID,
		Name:     req.Name,
		Artist:   req.Artist,
		CoverURL: req.CoverURL,
		AddedAt:  time.Now(),
	}

	if err := h.deps.Favorites.Add(c.Request.Context(), favorite); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func (h *handler) removeFavorite(c *gin.Context) {
	userID, err := h.deps.SessionManager.SessionUserID(c.Request.Context(), h.sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.deps.Favorites.Remove(c.Request.Context(), userID, c.Param("albumID")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// requireCSRF guards the mutating routes. The frontend echoes the token from
// the JS-readable cookie in the CSRFHeader.
func (h *handler) requireCSRF(c *gin.Context) {
	sessionID := h.sessionID(c)
	if sessionID == "" {
		h.abortWithError(c, serviceerr.ErrNotAuthenticated)
		return
	}

	if !h.deps.SessionManager.ValidateCSRFToken(c.GetHeader(CSRFHeader), sessionID) {
		h.abortWithError(c, serviceerr.ErrAccessDenied)
		return
	}

	c.Next()
}

func (h *handler) sessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(h.cfg.Session.CookieTemplate.Name)
	if err != nil {
		return ""
	}

	return sessionID
}

// errorCode maps any error onto the taxonomy code surfaced to clients.
func errorCode(err error) serviceerr.Code {
	var serviceErr *serviceerr.Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Err
	}

	var exchangeErr *spotify.ExchangeError
	if errors.As(err, &exchangeErr) {
		return serviceerr.CodeAuthExchangeFailed
	}

	var refreshErr *spotify.RefreshError
	if errors.As(err, &refreshErr) {
		return serviceerr.CodeAuthRefreshFailed
	}

	var profileErr *spotify.ProfileError
	if errors.As(err, &profileErr) {
		return serviceerr.CodeProfileFetchFailed
	}

	return serviceerr.CodeUnknown
}

func (h *handler) writeError(c *gin.Context, err error) {
	h.renderError(c, err)
}

func (h *handler) abortWithError(c *gin.Context, err error) {
	h.renderError(c, err)
	c.Abort()
}

// renderError logs the full failure and answers with the taxonomy code. The
// description is withheld in production; the code alone is always safe to
// expose.
func (h *handler) renderError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	code := errorCode(err)
	taxonomyErr := &serviceerr.Error{Err: code}

	var serviceErr *serviceerr.Error
	if errors.As(err, &serviceErr) {
		taxonomyErr = serviceErr
	}

	var apiErr *spotify.APIError
	status := taxonomyErr.HTTPStatus()
	if errors.As(err, &apiErr) {
		status = http.StatusBadGateway
	}

	slogctx.Error(ctx, "Request failed", "error", err, "code", code, "status", status)

	body := gin.H{"error": code}
	if !h.cfg.Application.IsProduction() {
		body["errorDescription"] = err.Error()
	} else if taxonomyErr.Description != "" {
		body["errorDescription"] = taxonomyErr.Description
	}

	c.JSON(status, body)
}
