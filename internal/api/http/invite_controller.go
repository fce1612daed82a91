package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/api/http/converter"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
)

type InviteController struct {
	invites    service.InviteInteractor
	defaultTTL time.Duration
}

func NewInviteController(invites service.InviteInteractor, defaultTTL time.Duration) *InviteController {
	return &InviteController{invites: invites, defaultTTL: defaultTTL}
}

func (c *InviteController) ttlFor(expirationMinutes int) time.Duration {
	if expirationMinutes > 0 {
		return time.Duration(expirationMinutes) * time.Minute
	}
	return c.defaultTTL
}

func (c *InviteController) IssueInvite(ctx *gin.Context) {
	type request struct {
		SessionID         string `json:"sessionId" binding:"required"`
		InviteeEmail      string `json:"inviteeEmail" binding:"omitempty,email"`
		InviteeName       string `json:"inviteeName"`
		ExpirationMinutes int    `json:"expirationMinutes" binding:"omitempty,min=1"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	invite, err := c.invites.Issue(ctx.Request.Context(), sessionID, req.InviteeEmail, req.InviteeName, c.ttlFor(req.ExpirationMinutes))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"invite": converter.InviteToApi(invite)})
}

func (c *InviteController) IssueBulk(ctx *gin.Context) {
	type recipient struct {
		Email string `json:"email" binding:"omitempty,email"`
		Name  string `json:"name"`
	}
	type request struct {
		SessionID         string      `json:"sessionId" binding:"required"`
		Recipients        []recipient `json:"recipients" binding:"required,min=1"`
		ExpirationMinutes int         `json:"expirationMinutes" binding:"omitempty,min=1"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	recipients := make([]service.BulkRecipient, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		recipients = append(recipients, service.BulkRecipient{Email: r.Email, Name: r.Name})
	}

	results := c.invites.IssueBulk(ctx.Request.Context(), sessionID, recipients, c.ttlFor(req.ExpirationMinutes))

	type bulkItem struct {
		Email  string                    `json:"email,omitempty"`
		Name   string                    `json:"name,omitempty"`
		Invite *converter.InviteResponse `json:"invite,omitempty"`
		Error  string                    `json:"error,omitempty"`
		Code   string                    `json:"code,omitempty"`
	}

	items := make([]bulkItem, 0, len(results))
	issued := 0
	for _, result := range results {
		item := bulkItem{Email: result.Recipient.Email, Name: result.Recipient.Name}
		if result.Err != nil {
			item.Error = result.Err.Error()
			item.Code = service.CodeOf(result.Err)
		} else {
			item.Invite = converter.InviteToApi(result.Invite)
			issued++
		}
		items = append(items, item)
	}

	ctx.JSON(http.StatusOK, gin.H{"issued": issued, "results": items})
}

func (c *InviteController) ValidateInvite(ctx *gin.Context) {
	result, err := c.invites.Validate(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	body := gin.H{"valid": result.Valid, "reason": result.Reason}
	if result.SessionID != uuid.Nil {
		body["session_id"] = result.SessionID
	}
	if !result.ExpiresAt.IsZero() {
		body["expires_at"] = result.ExpiresAt
	}
	ctx.JSON(http.StatusOK, body)
}

func (c *InviteController) ConsumeInvite(ctx *gin.Context) {
	type request struct {
		DisplayName string `json:"displayName" binding:"required,min=2"`
		UserID      string `json:"userId"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	var userID *uuid.UUID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		userID = &parsed
	}

	assignment, err := c.invites.Consume(ctx.Request.Context(), ctx.Param("token"), req.DisplayName, userID)
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

func (c *InviteController) ListSessionInvites(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	invites, err := c.invites.ListSessionInvites(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	result := make([]*converter.InviteResponse, 0, len(invites))
	for _, invite := range invites {
		result = append(result, converter.InviteToApi(invite))
	}
	ctx.JSON(http.StatusOK, gin.H{"invites": result})
}
