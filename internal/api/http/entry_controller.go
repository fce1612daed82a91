package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/swarm_chat/internal/api/http/converter"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
)

// EntryController serves the public join flow: a prospective participant
// checks an invite code, then joins with it.
type EntryController struct {
	invites  service.InviteInteractor
	sessions service.SessionInteractor
	tracker  service.ParticipantInteractor
}

func NewEntryController(invites service.InviteInteractor, sessions service.SessionInteractor, tracker service.ParticipantInteractor) *EntryController {
	return &EntryController{invites: invites, sessions: sessions, tracker: tracker}
}

func (c *EntryController) EnterSession(ctx *gin.Context) {
	code := ctx.Query("code")
	if !domain.ValidTokenFormat(code) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":  service.CodeInvalidCodeFormat,
			"error": "invite code must be at least 32 url-safe characters",
		})
		return
	}

	result, err := c.invites.Validate(ctx.Request.Context(), code)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !result.Valid {
		status := http.StatusBadRequest
		if result.Reason == service.ReasonNotFound {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{"valid": false, "reason": result.Reason})
		return
	}

	session, err := c.sessions.GetSession(ctx.Request.Context(), result.SessionID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	occupancy, err := c.tracker.SessionOccupancy(ctx.Request.Context(), session.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"session":           converter.SessionToApi(session),
		"active":            occupancy.Active,
		"wait_estimate_sec": waitEstimateSeconds(session),
	})
}

func (c *EntryController) JoinSession(ctx *gin.Context) {
	type request struct {
		InviteCode  string `json:"inviteCode" binding:"required,min=32"`
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"displayName" binding:"required,min=2"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	assignment, err := c.invites.Consume(ctx.Request.Context(), req.InviteCode, req.DisplayName, nil)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"participantId": assignment.ParticipantID,
		"roomId":        assignment.RoomID,
		"sessionId":     assignment.SessionID,
	})
}

// waitEstimateSeconds is zero once the session is live; before that it is
// the time remaining until the scheduled start.
func waitEstimateSeconds(session *domain.Session) int {
	if session.Status != domain.SessionStatusScheduled {
		return 0
	}
	wait := time.Until(session.ScheduledStart)
	if wait < 0 {
		return 0
	}
	return int(wait.Seconds())
}
