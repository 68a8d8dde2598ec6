package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"groupchat/api/internal/config"
	"groupchat/api/internal/mail"
	"groupchat/api/internal/middleware"
	"groupchat/api/internal/repository"
	"groupchat/api/internal/service"
	"groupchat/api/internal/storage"
)

type HandlerSet struct {
	log   zerolog.Logger
	cfg   *config.AppConfig
	auth  *service.AuthService
	chat  *service.ChatService
	rooms *service.RoomService
	users service.UserStore
	db    *pgxpool.Pool
	cache *redis.Client
	store *storage.ObjectStore
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	mailer mail.Mailer,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	tokenRegistry := repository.NewTokenRegistry(db, cache)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	auth := service.NewAuthService(userRepo, tokenRegistry, cache, mailer, cfg, log)
	chat := service.NewChatService(messageRepo, roomRepo, userRepo, log)
	rooms := service.NewRoomService(roomRepo, userRepo, mailer, cfg, log)

	return HandlerSet{
		log:   log,
		cfg:   cfg,
		auth:  auth,
		chat:  chat,
		rooms: rooms,
		users: userRepo,
		db:    db,
		cache: cache,
		store: store,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	users := v1.Group("/users")
	{
		users.POST("/signup", h.SignUp)
		users.POST("/login", h.Login)
		users.POST("/logout", h.Logout)
		users.POST("/forgotPassword", h.ForgotPassword)
		users.POST("/resetPassword", h.ResetPassword)

		protected := users.Group("")
		protected.Use(middleware.Auth(h.auth))
		protected.GET("/view/all", h.ListUsers)
		protected.GET("/:userId/details", h.UserDetails)
		protected.PUT("/:userId/edit", h.EditUser)
		protected.POST("/:userId/delete", h.DeleteUser)
		protected.POST("/:userId/avatar", h.UploadAvatar)
	}

	chat := v1.Group("/chat")
	{
		chat.GET("/getGroupChat", h.GetGroupChat)

		protected := chat.Group("")
		protected.Use(middleware.Auth(h.auth))
		protected.POST("/send", h.SendMessage)
	}

	rooms := v1.Group("/chatRoom")
	rooms.Use(middleware.Auth(h.auth))
	{
		rooms.POST("/createChatRoom", h.CreateChatRoom)
		rooms.POST("/joinChatRoom", h.JoinChatRoom)
		rooms.PUT("/:chatRoomId/editChatRoom", h.EditChatRoom)
		rooms.POST("/sendInvite", h.SendInvite)
		rooms.GET("/getChatRooms", h.GetChatRooms)
		rooms.GET("/:chatRoomId/getChatRoom", h.GetChatRoom)
		rooms.GET("/:chatRoomId/closeGroup", h.CloseChatRoom)
		rooms.PUT("/deleteChatRoom", h.DeleteChatRoom)
	}
}
