package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/hilot-backend/internal/booking"
	"github.com/chachabrian/hilot-backend/internal/config"
	"github.com/chachabrian/hilot-backend/internal/database"
	"github.com/chachabrian/hilot-backend/internal/handlers"
	"github.com/chachabrian/hilot-backend/internal/logging"
	"github.com/chachabrian/hilot-backend/internal/middleware"
	"github.com/chachabrian/hilot-backend/internal/payment"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/chachabrian/hilot-backend/internal/services"
	"github.com/chachabrian/hilot-backend/pkg/mq"
	"github.com/chachabrian/hilot-backend/pkg/obs"
	"github.com/chachabrian/hilot-backend/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEndpoint != "" {
		shutdown, err := obs.InitTracer(ctx, "hilot-api", cfg.OTELEndpoint, cfg.AppEnv)
		if err != nil {
			log.WithError(err).Warn("tracing disabled")
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	db, err := database.InitDB(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	repo := repository.NewPostgres(db)

	rdb, err := services.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer rdb.Close()

	hub := services.NewHub(log)
	go hub.Run(ctx)

	sinks := []booking.EventSink{hub, rdb}
	if cfg.AMQPURL != "" {
		pub, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.WithError(err).Warn("AMQP publisher disabled")
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		kp := mq.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		sinks = append(sinks, kp)
	}

	var notifiers []booking.Notifier
	push, err := services.NewPush(ctx, cfg.FirebaseServiceAccountPath, log)
	if err != nil {
		log.WithError(err).Warn("Firebase initialization warning")
	} else if push != nil {
		notifiers = append(notifiers, push)
	}
	mailer := utils.NewMailer(utils.EmailConfig{
		From:     cfg.EmailFrom,
		Password: cfg.EmailPassword,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		BaseURL:  cfg.BaseURL,
	})
	var codes handlers.CodeSender
	if mailer.Configured() {
		notifiers = append(notifiers, services.NewEmailNotifier(mailer))
		codes = mailer
	} else {
		log.Warn("SMTP not configured, booking emails and guest account claims disabled")
	}

	sms := utils.NewSMSSender(utils.SMSConfig{Username: cfg.ATUsername, APIKey: cfg.ATAPIKey})
	if sms.Configured() {
		notifiers = append(notifiers, services.NewSMSNotifier(sms))
	}

	storage, err := services.NewStorage(services.StorageConfig{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Bucket:          cfg.S3Bucket,
		UploadDir:       cfg.UploadDir,
		BaseURL:         cfg.BaseURL,
	}, log)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	var gateway payment.Gateway
	if cfg.GatewayConfigured() {
		omise, err := payment.NewOmiseGateway(cfg.OmisePublicKey, cfg.OmiseSecretKey)
		if err != nil {
			log.Fatalf("Failed to initialize payment gateway: %v", err)
		}
		gateway = omise
	} else {
		log.Warn("OMISE_SECRET_KEY not set, checkout runs the card simulator")
	}

	bookings := booking.NewService(repo, payment.NewResolver(gateway, cfg.PaymentCurrency), booking.Options{
		PlatformFee: cfg.PlatformFee,
		Sinks:       sinks,
		Guard:       rdb,
		Locations:   rdb,
		Notifiers:   notifiers,
		Logger:      log,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.IdempotencyHeader}
	r.Use(cors.New(corsConfig))

	if !storage.UsingS3() {
		r.Static("/uploads", storage.UploadDir())
	}

	handlers.RegisterRoutes(r, handlers.Deps{
		Bookings:  bookings,
		Repo:      repo,
		Hub:       hub,
		Docs:      storage,
		Codes:     codes,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
