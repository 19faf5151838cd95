package httpgin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/okateru/plango/internal/domain"
	"github.com/okateru/plango/internal/editor"
	"github.com/okateru/plango/internal/geometry"
	redisrepo "github.com/okateru/plango/internal/repository/redis"
	"github.com/okateru/plango/internal/service"
	"github.com/okateru/plango/internal/token"
)

const idemLockTTL = 30 * time.Second

// @Summary  Issue an editor token
// @Param    req  body  IssueTokenRequest  false  "optional plan scope"
// @Success  200  {object}  IssueTokenResponse
// @Router   /editor/token [post]
func handleIssueToken(issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IssueTokenRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		tok, err := issuer.Issue(req.PlanID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, IssueTokenResponse{Token: tok})
	}
}

// @Summary  Open an editing session
// @Param    X-Editor-Token   header  string              true   "editor token"
// @Param    Idempotency-Key  header  string              false  "dedupe key"
// @Param    req              body    OpenSessionRequest  false  "plan to load; empty for a blank plan"
// @Success  201  {object}  SessionStateResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  429  {object}  ErrorResponse
// @Router   /editor/sessions [post]
func handleOpenSession(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req OpenSessionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		idemKey := c.GetHeader("Idempotency-Key")
		if idemKey != "" {
			key := redisrepo.KeyIdemOpen(idemKey)
			if cached, ok, err := idem.GetResult(ctx, key); err == nil && ok {
				var state SessionStateResponse
				if json.Unmarshal([]byte(cached), &state) == nil {
					c.JSON(http.StatusOK, state)
					return
				}
			}
			acquired, err := idem.AcquireLock(ctx, key, idemLockTTL)
			if err == nil && !acquired {
				if locked, _ := idem.IsLocked(ctx, key); locked {
					c.JSON(http.StatusConflict, ErrorResponse{Error: "request already in flight"})
					return
				}
			}
		}

		sess, err := svcs.Sessions.Open(ctx, req.PlanID, "open:"+c.ClientIP())
		if err != nil {
			if idemKey != "" {
				_ = idem.Release(ctx, redisrepo.KeyIdemOpen(idemKey))
			}
			respondErr(c, err)
			return
		}

		state := sessionState(sess)
		if idemKey != "" {
			if payload, err := json.Marshal(state); err == nil {
				_ = idem.SaveResult(ctx, redisrepo.KeyIdemOpen(idemKey), string(payload))
			}
		}
		c.JSON(http.StatusCreated, state)
	}
}

// @Summary  Get session state
// @Param    id  path  string  true  "Session ID"
// @Success  200  {object}  SessionStateResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /editor/sessions/{id} [get]
func handleSessionState(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionState(sess))
	}
}

// @Summary  Close a session
// @Param    id       path   string  true   "Session ID"
// @Param    confirm  query  bool    false  "discard unsaved changes"
// @Success  204
// @Failure  409  {object}  ErrorResponse
// @Router   /editor/sessions/{id} [delete]
func handleCloseSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		confirmed := c.Query("confirm") == "true"
		if err := svcs.Sessions.Close(c.Param("id"), confirmed); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Add an element
// @Param    id   path  string             true  "Session ID"
// @Param    req  body  AddElementRequest  true  "element type and drop point"
// @Success  201  {object}  ElementResponse
// @Router   /editor/sessions/{id}/elements [post]
func handleAddElement(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		var req AddElementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		el := sess.AddElement(domain.ElementType(req.Type), req.X, req.Y)
		c.JSON(http.StatusCreated, ElementResponse{Element: el})
	}
}

// @Summary  Update element properties
// @Param    id   path  string                true  "Session ID"
// @Param    eid  path  string                true  "Element ID"
// @Param    req  body  UpdateElementRequest  true  "fields to patch"
// @Success  200  {object}  ElementResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /editor/sessions/{id}/elements/{eid} [patch]
func handleUpdateElement(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		var patch UpdateElementRequest
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err.Error())
			return
		}

		el, err := sess.UpdateElementProperties(c.Param("eid"), patch)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ElementResponse{Element: el})
	}
}

// @Summary  Delete an element
// @Param    id       path   string  true   "Session ID"
// @Param    eid      path   string  true   "Element ID"
// @Param    confirm  query  bool    false  "confirm deletion"
// @Success  204
// @Failure  409  {object}  ErrorResponse
// @Router   /editor/sessions/{id}/elements/{eid} [delete]
func handleDeleteElement(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		confirmed := c.Query("confirm") == "true"
		if err := sess.DeleteElement(c.Param("eid"), confirmed); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Move an element
// @Param    id   path  string              true  "Session ID"
// @Param    eid  path  string              true  "Element ID"
// @Param    req  body  MoveElementRequest  true  "drop position"
// @Success  200  {object}  SessionStateResponse
// @Router   /editor/sessions/{id}/elements/{eid}/move [post]
func handleMoveElement(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		var req MoveElementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := sess.MoveElement(c.Param("eid"), req.X, req.Y); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionState(sess))
	}
}

// @Summary  Resize an element
// @Param    id   path  string                true  "Session ID"
// @Param    eid  path  string                true  "Element ID"
// @Param    req  body  ResizeElementRequest  true  "transform-end payload"
// @Success  200  {object}  ElementResponse
// @Router   /editor/sessions/{id}/elements/{eid}/resize [post]
func handleResizeElement(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		var req ResizeElementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		rotation := req.Rotation
		if req.SnapRotation {
			rotation = geometry.SnapRotation(rotation)
		}

		el, err := sess.ResizeElement(c.Param("eid"), req.ScaleX, req.ScaleY, req.X, req.Y, rotation)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ElementResponse{Element: el})
	}
}

// @Summary  Duplicate an element
// @Param    id   path  string  true  "Session ID"
// @Param    eid  path  string  true  "Element ID"
// @Success  201  {object}  ElementResponse
// @Router   /editor/sessions/{id}/elements/{eid}/duplicate [post]
func handleDuplicateElement(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		el, err := sess.DuplicateElement(c.Param("eid"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, ElementResponse{Element: el})
	}
}

// @Summary  Create or update a section
// @Param    id   path  string                true   "Session ID"
// @Param    sid  path  string                false  "Section ID (update)"
// @Param    req  body  UpsertSectionRequest  true   "section fields"
// @Success  200  {object}  SectionResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /editor/sessions/{id}/sections [post]
func handleUpsertSection(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		var req UpsertSectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sec, err := sess.UpsertSection(c.Param("sid"), req.Name, req.Color, req.DefaultPrice)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, SectionResponse{Section: sec})
	}
}

// @Summary  Delete a section
// @Param    id       path   string  true   "Session ID"
// @Param    sid      path   string  true   "Section ID"
// @Param    confirm  query  bool    false  "confirm deletion"
// @Success  204
// @Failure  409  {object}  ErrorResponse
// @Router   /editor/sessions/{id}/sections/{sid} [delete]
func handleDeleteSection(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		confirmed := c.Query("confirm") == "true"
		if err := sess.DeleteSection(c.Param("sid"), confirmed); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Select an element
// @Param    id   path  string                true  "Session ID"
// @Param    req  body  SelectElementRequest  true  "element to select"
// @Success  200  {object}  SessionStateResponse
// @Router   /editor/sessions/{id}/select [post]
func handleSelectElement(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		var req SelectElementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := sess.SelectElement(req.ElementID); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionState(sess))
	}
}

// @Summary  Clear selection
// @Param    id  path  string  true  "Session ID"
// @Success  200  {object}  SessionStateResponse
// @Router   /editor/sessions/{id}/deselect [post]
func handleDeselectAll(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		sess.DeselectAll()
		c.JSON(http.StatusOK, sessionState(sess))
	}
}

// @Summary  Undo the last change
// @Param    id  path  string  true  "Session ID"
// @Success  200  {object}  SessionStateResponse
// @Router   /editor/sessions/{id}/undo [post]
func handleUndo(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		// An exhausted history is not an error for the caller; the session
		// state simply comes back unchanged.
		if err := sess.Undo(); err != nil && err != editor.ErrNothingToUndo {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionState(sess))
	}
}

// @Summary  Redo the last undone change
// @Param    id  path  string  true  "Session ID"
// @Success  200  {object}  SessionStateResponse
// @Router   /editor/sessions/{id}/redo [post]
func handleRedo(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		if err := sess.Redo(); err != nil && err != editor.ErrNothingToRedo {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionState(sess))
	}
}

// @Summary  Update canvas settings
// @Param    id   path  string         true  "Session ID"
// @Param    req  body  CanvasRequest  true  "canvas settings"
// @Success  200  {object}  SessionStateResponse
// @Router   /editor/sessions/{id}/canvas [put]
func handleUpdateCanvas(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		var req CanvasRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess.UpdateCanvas(domain.Canvas{
			Width:      req.Width,
			Height:     req.Height,
			Grid:       req.Grid,
			GridSize:   req.GridSize,
			Background: req.Background,
		})
		c.JSON(http.StatusOK, sessionState(sess))
	}
}

// @Summary  Update plan title and linked location
// @Param    id   path  string       true  "Session ID"
// @Param    req  body  MetaRequest  true  "fields to set"
// @Success  200  {object}  SessionStateResponse
// @Router   /editor/sessions/{id}/meta [put]
func handleUpdateMeta(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svcs.Sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}

		var req MetaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if req.Title != nil {
			sess.SetTitle(*req.Title)
		}
		if req.LinkedLocation != nil {
			sess.SetLinkedLocation(*req.LinkedLocation)
		}
		c.JSON(http.StatusOK, sessionState(sess))
	}
}

// @Summary  Save the session document
// @Param    id               path    string  true   "Session ID"
// @Param    Idempotency-Key  header  string  false  "dedupe key"
// @Success  200  {object}  SaveResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /editor/sessions/{id}/save [post]
func handleSaveSession(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sessionID := c.Param("id")

		idemKey := c.GetHeader("Idempotency-Key")
		if idemKey != "" {
			key := redisrepo.KeyIdemSave(sessionID, idemKey)
			if cached, ok, err := idem.GetResult(ctx, key); err == nil && ok {
				var resp SaveResponse
				if json.Unmarshal([]byte(cached), &resp) == nil {
					c.JSON(http.StatusOK, resp)
					return
				}
			}
			acquired, err := idem.AcquireLock(ctx, key, idemLockTTL)
			if err == nil && !acquired {
				if locked, _ := idem.IsLocked(ctx, key); locked {
					c.JSON(http.StatusConflict, ErrorResponse{Error: "save already in flight"})
					return
				}
			}
		}

		planID, err := svcs.Sessions.Save(ctx, sessionID)
		if err != nil {
			if idemKey != "" {
				_ = idem.Release(ctx, redisrepo.KeyIdemSave(sessionID, idemKey))
			}
			respondErr(c, err)
			return
		}

		resp := SaveResponse{PlanID: planID}
		if idemKey != "" {
			if payload, err := json.Marshal(resp); err == nil {
				_ = idem.SaveResult(ctx, redisrepo.KeyIdemSave(sessionID, idemKey), string(payload))
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Duplicate a stored plan
// @Param    id  path  string  true  "Plan ID"
// @Success  201  {object}  DuplicatePlanResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /editor/plans/{id}/duplicate [post]
func handleDuplicatePlan(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !planInScope(c, c.Param("id")) {
			return
		}
		newID, err := svcs.Plans.Duplicate(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, DuplicatePlanResponse{PlanID: newID})
	}
}

// @Summary  Delete a stored plan
// @Param    id  path  string  true  "Plan ID"
// @Success  204
// @Failure  404  {object}  ErrorResponse
// @Router   /editor/plans/{id} [delete]
func handleDeletePlan(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !planInScope(c, c.Param("id")) {
			return
		}
		if err := svcs.Plans.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// planInScope rejects plan-admin calls whose token was scoped to a different
// plan. Unscoped tokens may touch any plan.
func planInScope(c *gin.Context, planID string) bool {
	scope := c.GetString("token_plan_scope")
	if scope != "" && scope != planID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "token not valid for this plan"})
		return false
	}
	return true
}

func sessionState(sess *editor.Session) SessionStateResponse {
	idx, length := sess.HistoryPosition()
	return SessionStateResponse{
		SessionID:     sess.ID(),
		Document:      *sess.Document(),
		Dirty:         sess.Dirty(),
		Selected:      sess.Selected(),
		HistoryIndex:  idx,
		HistoryLength: length,
	}
}
