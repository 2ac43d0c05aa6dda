package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kaiteddy/garage-comms/internal/config"
	"github.com/kaiteddy/garage-comms/internal/handlers"
	"github.com/kaiteddy/garage-comms/internal/providers"
	"github.com/kaiteddy/garage-comms/internal/repository"
	"github.com/kaiteddy/garage-comms/internal/services"
	xhttp "github.com/kaiteddy/garage-comms/pkg/http"
	"github.com/kaiteddy/garage-comms/pkg/logger"
	"github.com/kaiteddy/garage-comms/pkg/pg"
	"github.com/kaiteddy/garage-comms/pkg/prom"
	"github.com/kaiteddy/garage-comms/pkg/redis"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 30))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := config.Get().AppEnv == "dev"
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	if err := prom.Create("", config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed creating metrics registry", "error", err)
	}
	if config.Get().AppDebugMetricsAddr != "" {
		go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
	}

	registry := providers.NewRegistry(
		providers.NewWhatsAppProvider(providers.WhatsAppConfig{
			URL:     config.Get().WhatsAppAPIURL,
			APIKey:  config.Get().WhatsAppAPIKey,
			Timeout: config.Get().WhatsAppTimeout,
		}),
		providers.NewSMSProvider(providers.SMSConfig{
			URL:     config.Get().SMSAPIURL,
			APIKey:  config.Get().SMSAPIKey,
			Sender:  config.Get().SMSSender,
			Timeout: config.Get().SMSTimeout,
		}),
		providers.NewEmailProvider(providers.EmailConfig{
			Host:     config.Get().SMTPHost,
			Port:     config.Get().SMTPPort,
			User:     config.Get().SMTPUser,
			Password: config.Get().SMTPPassword,
			From:     config.Get().EmailFrom,
		}),
	)

	customerRepo := repository.NewCustomerRepository(db)
	correspondenceRepo := repository.NewCorrespondenceRepository(db)

	profileService := services.NewProfileService(customerRepo, correspondenceRepo, registry.Capabilities())
	strategyService := services.NewStrategyService()
	templateService := services.NewTemplateService(services.BusinessInfo{
		Name:  config.Get().BusinessName,
		Phone: config.Get().BusinessPhone,
		Email: config.Get().BusinessEmail,
	})
	cooldown := services.NewCooldownGuard(redisAdap, config.Get().DispatchCooldown)
	dispatchService := services.NewDispatchService(profileService, strategyService, templateService, registry, correspondenceRepo, cooldown)
	statsService := services.NewStatsService(correspondenceRepo, registry)
	healthService := services.NewHealthService(db, redisAdap)

	dispatchHandler := handlers.NewDispatchHandler(dispatchService)
	statsHandler := handlers.NewStatsHandler(statsService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterDispatchRoutes(g, dispatchHandler)
	handlers.RegisterStatsRoutes(g, statsHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(config.Get().HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
