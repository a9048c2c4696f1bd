package main

import (
	"context"
	"log"

	"github.com/techagentng/bookclub/config"
	"github.com/techagentng/bookclub/db"
	"github.com/techagentng/bookclub/mailingservices"
	"github.com/techagentng/bookclub/realtime"
	"github.com/techagentng/bookclub/server"
	"github.com/techagentng/bookclub/services"
	"github.com/techagentng/bookclub/services/jwt"
	"github.com/techagentng/bookclub/storage"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := config.NewLogger(conf)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.GetDB(conf)
	if err != nil {
		logger.Fatalw("connect database", "error", err)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, conf)
	if err != nil {
		logger.Fatalw("init storage", "driver", conf.StorageDriver, "error", err)
	}

	// Initialize Mailgun client
	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init(conf)

	authRepo := db.NewAuthRepo(gormDB)
	bookRepo := db.NewBookRepo(gormDB)
	messageRepo := db.NewMessageRepo(gormDB)

	var notifier services.Notifier
	if conf.FirebaseCredentialsFile != "" {
		client, err := services.NewFirebaseMessaging(ctx, conf.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatalw("init firebase messaging", "error", err)
		}
		notifier = services.NewNotificationService(client, authRepo, logger)
		logger.Info("firebase messaging client initialized")
	}

	hub := realtime.NewHub(logger)
	messageService := services.NewMessageService(messageRepo, authRepo, hub, notifier, logger)
	manager := realtime.NewManager(hub, messageService, realtime.Options{
		SendBuffer:   conf.SocketSendBuffer,
		ReadTimeout:  conf.SocketReadTimeout,
		WriteTimeout: conf.SocketWriteTimeout,
	}, logger)

	s := &server.Server{
		Config:         conf,
		Logger:         logger,
		DB:             gormDB,
		Gate:           jwt.NewGate(conf.JWTSecret, authRepo),
		AuthService:    services.NewAuthService(authRepo, conf, mailgunClient, logger),
		BookService:    services.NewBookService(bookRepo, logger),
		MessageService: messageService,
		MediaService:   services.NewMediaService(store, authRepo, logger),
		Realtime:       manager,
	}
	if google := services.NewGoogleOAuth(conf); google != nil {
		s.GoogleOAuth = google
	}

	s.Start()
}
