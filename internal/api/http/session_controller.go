package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/api/http/converter"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
)

type SessionController struct {
	sessions service.SessionInteractor
	tracker  service.ParticipantInteractor
}

func NewSessionController(sessions service.SessionInteractor, tracker service.ParticipantInteractor) *SessionController {
	return &SessionController{sessions: sessions, tracker: tracker}
}

func (c *SessionController) CreateSession(ctx *gin.Context) {
	type request struct {
		Name            string    `json:"name" binding:"required"`
		ScheduledStart  time.Time `json:"scheduled_start" binding:"required"`
		DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
		MaxParticipants int       `json:"max_participants" binding:"required,min=1"`
		MaxPerRoom      int       `json:"max_participants_per_room" binding:"required,min=1"`
		CreatedBy       string    `json:"created_by" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	createdBy, err := uuid.Parse(req.CreatedBy)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid created_by uuid"})
		return
	}

	session, err := c.sessions.CreateSession(ctx.Request.Context(), service.CreateSessionParams{
		Name:            req.Name,
		ScheduledStart:  req.ScheduledStart,
		Duration:        time.Duration(req.DurationMinutes) * time.Minute,
		MaxParticipants: req.MaxParticipants,
		MaxPerRoom:      req.MaxPerRoom,
	}, createdBy)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"session": converter.SessionToApi(session)})
}

func (c *SessionController) GetSession(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := c.sessions.GetSession(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"session": converter.SessionToApi(session)})
}

func (c *SessionController) ListSessions(ctx *gin.Context) {
	sessions, err := c.sessions.ListSessions(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	result := make([]*converter.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, converter.SessionToApi(session))
	}
	ctx.JSON(http.StatusOK, gin.H{"sessions": result})
}

func (c *SessionController) StartSession(ctx *gin.Context) {
	c.transition(ctx, c.sessions.StartSession)
}

func (c *SessionController) EndSession(ctx *gin.Context) {
	c.transition(ctx, c.sessions.EndSession)
}

func (c *SessionController) CancelSession(ctx *gin.Context) {
	c.transition(ctx, c.sessions.CancelSession)
}

func (c *SessionController) transition(ctx *gin.Context, apply func(context.Context, uuid.UUID) (*domain.Session, error)) {
	id, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	session, err := apply(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"session": converter.SessionToApi(session)})
}

func (c *SessionController) SessionOccupancy(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	occupancy, err := c.tracker.SessionOccupancy(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"active": occupancy.Active,
		"total":  occupancy.Total,
	})
}
