package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vlasenko/contacts_api/internal/cache"
	"github.com/vlasenko/contacts_api/internal/config"
	"github.com/vlasenko/contacts_api/internal/es"
	"github.com/vlasenko/contacts_api/internal/handlers"
	"github.com/vlasenko/contacts_api/internal/logging"
	"github.com/vlasenko/contacts_api/internal/mail"
	"github.com/vlasenko/contacts_api/internal/mykafka"
	"github.com/vlasenko/contacts_api/internal/repository"
	"github.com/vlasenko/contacts_api/internal/service"
	"github.com/vlasenko/contacts_api/internal/tokens"
	httpserver "github.com/vlasenko/contacts_api/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var sessions cache.SessionCache
	var redisCache *cache.RedisCache
	if configuration.REDIS_ADDR != "" {
		redisCache, err = cache.NewRedisCache(context.Background(), configuration.REDIS_ADDR, cache.DefaultTTL)
		if err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		sessions = redisCache
	} else {
		logger.Warn("redis_not_configured", "fallback", "in-memory session cache")
		sessions = cache.NewMemoryCache(cache.DefaultTTL)
	}

	issuer := tokens.NewIssuer(tokens.NewCodec([]byte(configuration.JWT_SECRET)))

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:   configuration.SMTP_HOST,
		Port:   configuration.SMTP_PORT,
		User:   configuration.SMTP_USER,
		Pass:   configuration.SMTP_PASS,
		From:   configuration.MAIL_FROM,
		AppURL: configuration.APP_URL,
	}, issuer)

	auth := &service.AuthService{
		Users:  &repository.UserRepo{DB: db},
		Cache:  sessions,
		Issuer: issuer,
		Mail:   sender,
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	contactHandler := &handlers.ContactHandler{
		Contacts: &repository.ContactRepo{DB: db},
		Index:    "contacts",
	}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("es init error: %v", err)
		}
		contactHandler.ES = esClient
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})

	httpserver.Register(e, &httpserver.Deps{
		Auth:           auth,
		AuthHandler:    &handlers.AuthHandler{Auth: auth, Producer: producer},
		ContactHandler: contactHandler,
		UserHandler:    &handlers.UserHandler{Auth: auth},
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(configuration.PORT),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
