package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(sessionController *SessionController, inviteController *InviteController, entryController *EntryController, roomController *RoomController, allowOrigins []string) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	if len(allowOrigins) > 0 {
		config.AllowOrigins = allowOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:3000"}
	}
	config.AllowCredentials = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	if sessionController != nil {
		sessions := api.Group("/sessions")
		sessions.POST("/create", sessionController.CreateSession)
		sessions.GET("", sessionController.ListSessions)
		sessions.GET("/:sessionID", sessionController.GetSession)
		sessions.GET("/:sessionID/occupancy", sessionController.SessionOccupancy)
		sessions.POST("/:sessionID/start", sessionController.StartSession)
		sessions.POST("/:sessionID/end", sessionController.EndSession)
		sessions.POST("/:sessionID/cancel", sessionController.CancelSession)
	}

	if entryController != nil {
		entry := router.Group("/sessionentry")
		entry.GET("/enterSession", entryController.EnterSession)
		entry.POST("/joinSession", entryController.JoinSession)
	}

	chat := router.Group("/chat")

	if inviteController != nil {
		invites := chat.Group("/invites")
		invites.POST("", inviteController.IssueInvite)
		invites.POST("/bulk", inviteController.IssueBulk)
		invites.GET("/session/:sessionID", inviteController.ListSessionInvites)
		invites.GET("/:token/validate", inviteController.ValidateInvite)
		invites.POST("/:token/consume", inviteController.ConsumeInvite)
	}

	if roomController != nil {
		rooms := chat.Group("/rooms")
		rooms.GET("/session/:sessionID", roomController.ListSessionRooms)
		rooms.GET("/:roomID/messages", roomController.ListRoomMessages)
		rooms.GET("/ws", roomController.JoinRoom)
	}

	return router
}
