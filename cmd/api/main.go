package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/campusshelf/campusshelf-backend/api/routes"
	"github.com/campusshelf/campusshelf-backend/internal/cart"
	"github.com/campusshelf/campusshelf-backend/internal/chat"
	"github.com/campusshelf/campusshelf-backend/internal/contact"
	"github.com/campusshelf/campusshelf-backend/internal/listings"
	"github.com/campusshelf/campusshelf-backend/internal/moderation"
	"github.com/campusshelf/campusshelf-backend/internal/orders"
	"github.com/campusshelf/campusshelf-backend/internal/reviews"
	"github.com/campusshelf/campusshelf-backend/internal/users"
	"github.com/campusshelf/campusshelf-backend/internal/wishlist"
	"github.com/campusshelf/campusshelf-backend/pkg/auth/session"
	"github.com/campusshelf/campusshelf-backend/pkg/config"
	"github.com/campusshelf/campusshelf-backend/pkg/db"
	"github.com/campusshelf/campusshelf-backend/pkg/logger"
	"github.com/campusshelf/campusshelf-backend/pkg/metrics"
	"github.com/campusshelf/campusshelf-backend/pkg/migrate"
	"github.com/campusshelf/campusshelf-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewRegistry(redisClient, time.Duration(cfg.JWT.ExpirationMinutes)*time.Minute)
	if err != nil {
		logg.Error(context.Background(), "failed to create session registry", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	listingsRepo := listings.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	chatRepo := chat.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	reviewsRepo := reviews.NewRepository(dbClient.DB())
	moderationRepo := moderation.NewRepository(dbClient.DB())
	contactRepo := contact.NewRepository(dbClient.DB())

	listingsService, err := listings.NewService(listings.ServiceParams{
		Repo:  listingsRepo,
		Users: usersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:  cartRepo,
		Books: listingsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:   ordersRepo,
		Tx:     dbClient,
		Books:  listingsRepo,
		Users:  usersRepo,
		Cart:   cartRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	chatService, err := chat.NewService(chat.ServiceParams{
		Repo:  chatRepo,
		Books: listingsRepo,
		Users: usersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create chat service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:  wishlistRepo,
		Books: listingsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Repo:  reviewsRepo,
		Books: listingsRepo,
		Users: usersRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	moderationService, err := moderation.NewService(moderation.ServiceParams{
		Repo:          moderationRepo,
		Books:         listingsRepo,
		Users:         usersRepo,
		Orders:        ordersRepo,
		Conversations: chatRepo,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create moderation service", err)
		os.Exit(1)
	}

	contactService, err := contact.NewService(contact.ServiceParams{
		Repo: contactRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, registry, httpMetrics, dbClient, redisClient, sessions, routes.Services{
			Listings:   listingsService,
			Cart:       cartService,
			Orders:     ordersService,
			Chat:       chatService,
			Wishlist:   wishlistService,
			Reviews:    reviewsService,
			Moderation: moderationService,
			Contact:    contactService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
