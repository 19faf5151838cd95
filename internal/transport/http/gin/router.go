package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okateru/plango/internal/editor"
	"github.com/okateru/plango/internal/render"
	redisrepo "github.com/okateru/plango/internal/repository/redis"
	"github.com/okateru/plango/internal/service"
	"github.com/okateru/plango/internal/service/availability"
	"github.com/okateru/plango/internal/service/plans"
	"github.com/okateru/plango/internal/service/session"
	"github.com/okateru/plango/internal/token"
	"github.com/okateru/plango/internal/transport/ws"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	reg *render.Registry,
	hub *ws.Hub,
	idem *redisrepo.IdempotencyStore,
	issuer *token.Issuer,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/plans", handleListPlans(svcs))
	r.GET("/plans/:id", handleGetPlan(svcs))
	r.GET("/plans/:id/scene", handleGetScene(svcs, reg))
	r.GET("/plans/:id/status", handleGetStatus(svcs))
	r.POST("/plans/:id/status/refresh", handleRefreshStatus(svcs))
	r.GET("/plans/:id/live", handleLive(svcs, hub, logger))
	r.POST("/plans/:id/click", handleClick(svcs, reg))
	r.POST("/plans/:id/deselect", handleDeselect(reg))

	// Editor tokens are issued openly; every mutating editor call must then
	// carry one.
	r.POST("/editor/token", handleIssueToken(issuer))

	ed := r.Group("/editor", EditorTokenMiddleware(issuer))
	{
		ed.POST("/sessions", handleOpenSession(svcs, idem))
		ed.GET("/sessions/:id", handleSessionState(svcs))
		ed.DELETE("/sessions/:id", handleCloseSession(svcs))

		ed.POST("/sessions/:id/elements", handleAddElement(svcs))
		ed.PATCH("/sessions/:id/elements/:eid", handleUpdateElement(svcs))
		ed.DELETE("/sessions/:id/elements/:eid", handleDeleteElement(svcs))
		ed.POST("/sessions/:id/elements/:eid/move", handleMoveElement(svcs))
		ed.POST("/sessions/:id/elements/:eid/resize", handleResizeElement(svcs))
		ed.POST("/sessions/:id/elements/:eid/duplicate", handleDuplicateElement(svcs))

		ed.POST("/sessions/:id/sections", handleUpsertSection(svcs))
		ed.PUT("/sessions/:id/sections/:sid", handleUpsertSection(svcs))
		ed.DELETE("/sessions/:id/sections/:sid", handleDeleteSection(svcs))

		ed.POST("/sessions/:id/select", handleSelectElement(svcs))
		ed.POST("/sessions/:id/deselect", handleDeselectAll(svcs))

		ed.POST("/sessions/:id/undo", handleUndo(svcs))
		ed.POST("/sessions/:id/redo", handleRedo(svcs))

		ed.PUT("/sessions/:id/canvas", handleUpdateCanvas(svcs))
		ed.PUT("/sessions/:id/meta", handleUpdateMeta(svcs))

		ed.POST("/sessions/:id/save", handleSaveSession(svcs, idem))

		ed.POST("/plans/:id/duplicate", handleDuplicatePlan(svcs))
		ed.DELETE("/plans/:id", handleDeletePlan(svcs))
	}

	return r
}

// --- Public handlers ---

// @Summary  List floor plans
// @Param    location_id  query  string  false  "filter by linked location"
// @Success  200  {array}  domain.PlanSummary
// @Router   /plans [get]
func handleListPlans(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := svcs.Plans.List(c.Request.Context(), c.Query("location_id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, summaries, "public, max-age=15", true)
	}
}

// @Summary  Get floor plan document
// @Param    id  path  string  true  "Plan ID"
// @Success  200  {object}  domain.FloorPlan
// @Failure  404  {object}  ErrorResponse
// @Router   /plans/{id} [get]
func handleGetPlan(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		plan, err := svcs.Plans.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, plan, "public, max-age=60", true)
	}
}

// @Summary  Render floor plan scene
// @Param    id           path   string  true   "Plan ID"
// @Param    container_w  query  int     false  "container width"
// @Param    max_h        query  int     false  "height cap"
// @Param    mode         query  string  false  "display|reservation|ticket"
// @Param    embedded     query  bool    false  "embedded interaction mode"
// @Param    event_id     query  string  false  "event for live status"
// @Success  200  {object}  render.Scene
// @Router   /plans/{id}/scene [get]
func handleGetScene(svcs *service.Services, reg *render.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		inst, err := resolveInstance(c, svcs, reg)
		if err != nil {
			respondErr(c, err)
			return
		}

		containerW := parseIntDefault(c.Query("container_w"), 800)
		maxH := parseIntDefault(c.Query("max_h"), 600)

		scene := inst.Scene(containerW, maxH)

		if eventID := c.Query("event_id"); eventID != "" {
			if result, err := svcs.Availability.Status(c.Request.Context(), c.Param("id"), eventID); err == nil {
				scene.FetchedAtUnix = result.FetchedAtUnix
			}
		}

		writeJSONWithCache(c, http.StatusOK, scene, "public, max-age=5", true)
	}
}

// @Summary  Get element status map
// @Param    id        path   string  true  "Plan ID"
// @Param    event_id  query  string  true  "Event ID"
// @Success  200  {object}  availability.Result
// @Router   /plans/{id}/status [get]
func handleGetStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Query("event_id")
		if eventID == "" {
			badRequest(c, "missing event_id")
			return
		}
		result, err := svcs.Availability.Status(c.Request.Context(), c.Param("id"), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, result, "public, max-age=5", true)
	}
}

// @Summary  Force status re-fetch
// @Param    id        path   string  true  "Plan ID"
// @Param    event_id  query  string  true  "Event ID"
// @Success  200  {object}  availability.Result
// @Router   /plans/{id}/status/refresh [post]
func handleRefreshStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Query("event_id")
		if eventID == "" {
			badRequest(c, "missing event_id")
			return
		}
		result, err := svcs.Availability.Refresh(c.Request.Context(), c.Param("id"), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// @Summary  Live status stream (WebSocket)
// @Param    id        path   string  true  "Plan ID"
// @Param    event_id  query  string  true  "Event ID"
// @Router   /plans/{id}/live [get]
func handleLive(svcs *service.Services, hub *ws.Hub, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		planID := c.Param("id")
		eventID := c.Query("event_id")
		if eventID == "" {
			badRequest(c, "missing event_id")
			return
		}
		if _, err := svcs.Plans.Get(c.Request.Context(), planID); err != nil {
			respondErr(c, err)
			return
		}
		if err := hub.Serve(c.Writer, c.Request, planID, eventID); err != nil {
			logger.Error("websocket upgrade failed", "plan_id", planID, "error", err)
		}
	}
}

// @Summary  Resolve element click
// @Param    id   path  string        true  "Plan ID"
// @Param    req  body  ClickRequest  true  "payload"
// @Success  200  {object}  render.ClickResult
// @Failure  404  {object}  ErrorResponse
// @Router   /plans/{id}/click [post]
func handleClick(svcs *service.Services, reg *render.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ClickRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		inst, err := resolveInstanceParams(c, svcs, reg, req.Mode, req.Embedded, req.EventID)
		if err != nil {
			respondErr(c, err)
			return
		}

		res, err := inst.Click(req.ElementID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Clear embedded selection
// @Param    id  path  string  true  "Plan ID"
// @Success  204
// @Router   /plans/{id}/deselect [post]
func handleDeselect(reg *render.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		inst, err := reg.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		inst.Deselect()
		c.Status(http.StatusNoContent)
	}
}

// resolveInstance returns the render instance for the plan, creating or
// recreating it when the requested mode, embedding or event differ. Status is
// refreshed onto the instance from the availability service when an event is
// in play.
func resolveInstance(c *gin.Context, svcs *service.Services, reg *render.Registry) (*render.Instance, error) {
	return resolveInstanceParams(c, svcs, reg,
		c.Query("mode"), c.Query("embedded") == "true", c.Query("event_id"))
}

func resolveInstanceParams(c *gin.Context, svcs *service.Services, reg *render.Registry, modeStr string, embedded bool, eventID string) (*render.Instance, error) {
	planID := c.Param("id")

	mode := render.Mode(modeStr)
	switch mode {
	case render.ModeDisplay, render.ModeReservation, render.ModeTicket:
	default:
		mode = render.ModeDisplay
	}

	inst, err := reg.Get(planID)
	if err != nil || inst.Mode() != mode || inst.Embedded() != embedded || inst.EventID() != eventID {
		plan, perr := svcs.Plans.Get(c.Request.Context(), planID)
		if perr != nil {
			return nil, perr
		}
		inst = reg.Create(plan, mode, embedded, eventID)
	}

	if eventID != "" && mode != render.ModeDisplay {
		result, serr := svcs.Availability.Status(c.Request.Context(), planID, eventID)
		if serr == nil {
			inst.SetStatus(result.Elements)
		}
	}

	return inst, nil
}

// --- Helpers ---

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// plans service
	case errors.Is(err, plans.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "floor plan not found"})
		return
	case errors.Is(err, plans.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "title must not be empty"})
		return
	// availability service
	case errors.Is(err, availability.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "floor plan not found"})
		return
	// session service
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "editing session not found"})
		return
	case errors.Is(err, session.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "floor plan not found"})
		return
	case errors.Is(err, session.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
		return
	// editor engine
	case errors.Is(err, editor.ErrElementNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "element not found"})
		return
	case errors.Is(err, editor.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "section not found"})
		return
	case errors.Is(err, editor.ErrEmptySectionName):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "section name must not be empty"})
		return
	case errors.Is(err, editor.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "confirmation required"})
		return
	// renderer
	case errors.Is(err, render.ErrElementNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "element not found"})
		return
	case errors.Is(err, render.ErrInstanceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "renderer instance not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
