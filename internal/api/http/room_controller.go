package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/swarm_chat/internal/api/http/converter"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/gateway"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
)

const defaultMessagePageSize = 50

type RoomController struct {
	allocator service.AllocationInteractor
	messages  service.MessageInteractor
	hub       *gateway.Hub
	upgrader  websocket.Upgrader
}

func NewRoomController(allocator service.AllocationInteractor, messages service.MessageInteractor, hub *gateway.Hub) *RoomController {
	return &RoomController{
		allocator: allocator,
		messages:  messages,
		hub:       hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *RoomController) ListSessionRooms(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("sessionID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	summaries, err := c.allocator.RoomSummaries(ctx.Request.Context(), sessionID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	result := make([]*converter.RoomResponse, 0, len(summaries))
	for _, summary := range summaries {
		result = append(result, converter.RoomSummaryToApi(summary))
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": result})
}

func (c *RoomController) ListRoomMessages(ctx *gin.Context) {
	roomID, err := uuid.Parse(ctx.Param("roomID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	limit := defaultMessagePageSize
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := c.messages.ListRoomMessages(ctx.Request.Context(), roomID, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	result := make([]*converter.MessageResponse, 0, len(messages))
	for _, message := range messages {
		result = append(result, converter.MessageToApi(message))
	}
	ctx.JSON(http.StatusOK, gin.H{"messages": result})
}

// JoinRoom upgrades the connection and drives the gateway contract:
// consume the invite, subscribe to the assigned room group, then pump
// inbound frames until leave or disconnect.
func (c *RoomController) JoinRoom(ctx *gin.Context) {
	token := ctx.Query("code")
	displayName := ctx.Query("name")
	if displayName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if !domain.ValidTokenFormat(token) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":  service.CodeInvalidCodeFormat,
			"error": "invite code must be at least 32 url-safe characters",
		})
		return
	}

	var userID *uuid.UUID
	if raw := ctx.Query("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		userID = &parsed
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "failed to upgrade connection")
		return
	}

	client, err := c.hub.JoinRoomWithToken(context.Background(), conn, token, displayName, userID)
	if err != nil {
		conn.WriteJSON(gin.H{"error": err.Error(), "code": service.CodeOf(err)})
		conn.Close()
		return
	}

	_ = conn.WriteJSON(domain.RoomEvent{
		Type:     domain.EventParticipantJoined,
		RoomID:   client.RoomID.String(),
		SenderID: client.ParticipantID.String(),
		Payload: map[string]any{
			"participant_id": client.ParticipantID.String(),
			"display_name":   client.DisplayName,
		},
	})

	type inboundFrame struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			c.hub.LeaveRoom(context.Background(), client)
			return
		}

		c.hub.Touch(context.Background(), client)

		switch frame.Type {
		case "message":
			if _, err := c.hub.SendMessage(context.Background(), client, frame.Content); err != nil {
				conn.WriteJSON(gin.H{"error": err.Error(), "code": service.CodeOf(err)})
			}
		case "leave":
			c.hub.LeaveRoom(context.Background(), client)
			return
		default:
			conn.WriteJSON(gin.H{"error": "unsupported frame type: " + frame.Type})
		}
	}
}
