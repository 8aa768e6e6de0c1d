package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/katatrina/blood-notify/api"
	"github.com/katatrina/blood-notify/internal/backend"
	"github.com/katatrina/blood-notify/internal/bloodrequest"
	"github.com/katatrina/blood-notify/internal/event"
	"github.com/katatrina/blood-notify/internal/notification"
	"github.com/katatrina/blood-notify/internal/push"
	"github.com/katatrina/blood-notify/internal/session"
	"github.com/katatrina/blood-notify/internal/util"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rs/zerolog/log"

	_ "github.com/katatrina/blood-notify/docs"
)

//	@title			Blood Notify Client API
//	@version		1.0.0
//	@description	Local API of the blood bank notification client

//	@host		localhost:8081
//	@BasePath	/v1
//	@schemes	http
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}

	log.Info().Msg("configurations loaded successfully ✅")

	storage, err := newSessionStorage(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session storage 😣")
	}

	sessions := session.NewStore(storage)
	if profile := sessions.Load(context.Background()); profile != nil {
		log.Info().Str("user_id", profile.ID).Msg("restored session ✅")
	}

	client := backend.NewClient(config.APIBaseURL)
	log.Info().Str("base_url", config.APIBaseURL).Msg("backend client created successfully ✅")

	refresh := event.NewRefreshSignal()
	synced := event.NewBus[notification.Synced]("notificationsSynced")
	updates := event.NewBus[bloodrequest.Updated]("requestUpdated")
	foreground := event.NewBus[push.Foreground]("foregroundNotification")

	synchronizer, err := notification.NewSynchronizer(client, sessions, refresh, synced, config.PollInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create notification synchronizer 😣")
	}
	synchronizer.Start()
	log.Info().Dur("interval", config.PollInterval).Msg("notification synchronizer started ✅")

	requests := bloodrequest.NewView(client, sessions, updates, refresh)

	deviceInfo := util.DeviceInfo(config.ClientName)
	platform, err := push.NewFirebasePlatform(context.Background(), config.FirebaseCredentialsFile, config.FirebaseProjectID, deviceInfo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create push platform 😣")
	}
	bridge := push.NewBridge(platform, client, sessions, foreground, deviceInfo)
	bridge.Start()

	stream := event.NewStream(config.EventBufferSize)
	go stream.Run()

	server := api.NewServer(&config, client, sessions, synchronizer, requests, bridge, stream)
	stopForwarding := server.ForwardEvents(synced, updates, foreground)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Info().Msg("shutting down")
		stopForwarding()
		stream.Close()
		bridge.Close()
		requests.Close()
		if err := synchronizer.Close(); err != nil {
			log.Err(err).Msg("failed to stop notification synchronizer")
		}
		if err := platform.Close(); err != nil {
			log.Err(err).Msg("failed to close push platform")
		}
		if err := client.Close(); err != nil {
			log.Err(err).Msg("failed to close backend client")
		}
		os.Exit(0)
	}()

	runHTTPServer(server, config)
}

func newSessionStorage(config util.Config) (session.Storage, error) {
	if config.SessionStorage == util.SessionStorageRedis {
		redisDb := redis.NewClient(&redis.Options{
			Addr:     config.RedisServerAddress,
			Password: "", // no password set
			DB:       0,  // use default DB
		})
		if err := redisDb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info().Str("addr", config.RedisServerAddress).Msg("connected to redis ✅")
		return session.NewRedisStorage(redisDb, config.ClientName), nil
	}

	storage, err := session.NewFileStorage(config.SessionDir)
	if err != nil {
		return nil, err
	}
	return storage, nil
}

func runHTTPServer(server *api.Server, config util.Config) {
	log.Info().Str("address", config.HTTPServerAddress).Msg("starting HTTP server")

	err := server.Start(config.HTTPServerAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server 😣")
	}
}
