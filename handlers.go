package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"onearmedbandit/internal/bandit"
)

// homeHandler renders the slot machine page for the current session.
func (app *App) homeHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	state, err := app.getMachineState(ctx, sessionID)
	if err != nil {
		app.unavailable(c, err)
		return
	}
	app.renderPage(c, state)
}

// spinHandler handles a press of the spin control.
func (app *App) spinHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	state, err := app.dispatch(ctx, sessionID, bandit.SpinPressed{})
	if err != nil {
		app.unavailable(c, err)
		return
	}
	if state.Spinning {
		logInfo("%sSession %s spinning, %d credits left", reqPrefix(ctx), sessionID, state.Credits)
	}
	app.renderMachine(c, state)
}

// dismissHandler closes the insufficient-credits notice.
func (app *App) dismissHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	state, err := app.dispatch(ctx, sessionID, bandit.NoticeDismissed{})
	if err != nil {
		app.unavailable(c, err)
		return
	}
	app.renderMachine(c, state)
}

// machineStateHandler renders the current machine as an HTML fragment.
func (app *App) machineStateHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	state, err := app.getMachineState(ctx, sessionID)
	if err != nil {
		app.unavailable(c, err)
		return
	}
	c.HTML(http.StatusOK, TemplateMachine, app.templateData(state))
}

// apiStateHandler returns the current machine as JSON.
func (app *App) apiStateHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)
	state, err := app.getMachineState(ctx, sessionID)
	if err != nil {
		app.unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, buildMachineView(app.Rules, state))
}

// newGameHandler puts a fresh machine in front of the player, optionally
// rotating the session ID.
func (app *App) newGameHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := app.getOrCreateSession(c)

	if c.Query("reset") == "1" {
		if err := app.Machine.Remove(ctx, sessionID); err != nil {
			app.unavailable(c, err)
			return
		}
		app.clearSession(c)
		sessionID = app.issueSession(c)
		logInfo("Created new session ID: %s", sessionID)
	}

	state, err := app.Machine.Reset(ctx, sessionID)
	if err != nil {
		app.unavailable(c, err)
		return
	}
	logInfo("%sNew machine for session %s with %d credits", reqPrefix(ctx), sessionID, state.Credits)

	if isHTMX(c) {
		c.HTML(http.StatusOK, TemplateMachine, app.templateData(state))
		return
	}
	c.Redirect(http.StatusSeeOther, RouteHome)
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	sessions, err := app.Machine.Len(c.Request.Context())
	status := "ok"
	code := http.StatusOK
	if err != nil {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"env":       map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"sessions":  sessions,
		"stake":     app.Rules.Stake,
		"payout":    app.Rules.Payout,
		"uptime":    formatUptime(time.Since(app.StartTime)),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func (app *App) templateData(state bandit.State) gin.H {
	return gin.H{
		"title":   PageTitle,
		"screen":  buildScreen(app.Rules, state),
		"notice":  NoticeNotEnough,
		"dismiss": NoticeDismissLabel,
	}
}

func (app *App) renderPage(c *gin.Context, state bandit.State) {
	c.HTML(http.StatusOK, TemplatePage, app.templateData(state))
}

// renderMachine answers a player action: htmx requests get the machine
// fragment, plain form posts get the whole page.
func (app *App) renderMachine(c *gin.Context, state bandit.State) {
	if isHTMX(c) {
		c.HTML(http.StatusOK, TemplateMachine, app.templateData(state))
		return
	}
	app.renderPage(c, state)
}

// unavailable reports a machine that could not serve the request.
func (app *App) unavailable(c *gin.Context, err error) {
	logWarn("%sMachine unavailable: %v", reqPrefix(c.Request.Context()), err)
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": ErrorMachineUnavailable})
}
