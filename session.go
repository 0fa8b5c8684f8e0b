package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onearmedbandit/internal/bandit"
)

// getOrCreateSession retrieves the session ID from the cookie or creates a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || !isValidSessionID(sessionID) {
		sessionID = app.issueSession(c)
		logInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// issueSession sets a fresh session cookie and returns its ID.
func (app *App) issueSession(c *gin.Context) string {
	sessionID := uuid.NewString()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", app.IsProduction, true)
	return sessionID
}

// clearSession expires the session cookie.
func (app *App) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", app.IsProduction, true)
}

// isValidSessionID accepts only canonical UUIDs.
func isValidSessionID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// getMachineState returns the screen state for a session.
func (app *App) getMachineState(ctx context.Context, sessionID string) (bandit.State, error) {
	return app.Machine.Snapshot(ctx, sessionID)
}

// dispatch feeds one player input into the session's screen.
func (app *App) dispatch(ctx context.Context, sessionID string, msg bandit.Msg) (bandit.State, error) {
	s, err := app.Machine.Dispatch(ctx, sessionID, msg)
	if err != nil {
		logWarn("%sDispatch %T for session %s failed: %v", reqPrefix(ctx), msg, sessionID, err)
		return s, err
	}
	logDebug("%sSession %s handled %T: credits=%d spinning=%v notice=%v",
		reqPrefix(ctx), sessionID, msg, s.Credits, s.Spinning, s.NoticeVisible)
	return s, nil
}

// reqPrefix returns "[request_id=...] " when the context carries a request ID.
func reqPrefix(ctx context.Context) string {
	if reqID, _ := ctx.Value(requestIDKey).(string); reqID != "" {
		return "[request_id=" + reqID + "] "
	}
	return ""
}
