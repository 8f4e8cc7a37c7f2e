package api

import (
	"context"
	"fmt"
	"github.com/alex-pricope/catch-the-mole/api/controllers"
	"github.com/alex-pricope/catch-the-mole/api/transport"
	"github.com/alex-pricope/catch-the-mole/clock"
	"github.com/alex-pricope/catch-the-mole/live"
	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/alex-pricope/catch-the-mole/matchdata"
	"github.com/alex-pricope/catch-the-mole/rooms"
	"github.com/alex-pricope/catch-the-mole/storage"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"os"
	"time"
)

const (
	persistTimeout = 5 * time.Second
	visitorIdle    = 10 * time.Minute
)

type Server struct {
	config *Config

	registry  *rooms.Registry
	persister *rooms.Persister
	scheduler *cron.Cron
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	ctx := context.Background()
	r, err := s.Setup(ctx)
	if err != nil {
		logging.Log.Errorf("failed to set up server: %v", err)
		panic("failed to set up server")
	}
	defer s.Shutdown()

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

// Setup builds the registry and everything around it and returns the routed engine.
func (s *Server) Setup(ctx context.Context) (*gin.Engine, error) {
	s.registry = rooms.NewRegistry(&clock.DefaultClock{})
	engine := rooms.NewEngine(s.registry)

	// Persistence is optional, memory keeps rooms only for the process lifetime
	store, err := s.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if _, err := rooms.Restore(ctx, store, s.registry); err != nil {
			return nil, fmt.Errorf("failed to restore rooms: %w", err)
		}
		s.persister = rooms.NewPersister(store, s.config.PersistBuffer, persistTimeout)
		go s.persister.Run()
		s.registry.Observe(s.persister)
	}

	heroes, err := matchdata.LoadHeroCatalog(s.config.HeroesFile)
	if err != nil {
		logging.Log.Warnf("failed to load hero names from %s, using ids: %v", s.config.HeroesFile, err)
		heroes = matchdata.NewHeroCatalog(nil)
	}
	provider := matchdata.NewOpenDotaClient(s.config.BaseURL, s.config.Timeout, heroes)

	r := transport.NewRouter(s.config.GinMode, s.config.AllowedOrigins)
	limiter := transport.NewRateLimiter(s.config.RPS, s.config.Burst, nil)

	hub := live.NewHub(s.registry, controllers.RenderRoom, transport.OriginChecker(s.config.AllowedOrigins))
	s.registry.Observe(hub)

	// Housekeeping
	s.scheduler = cron.New()
	janitor := rooms.NewJanitor(s.registry, s.config.TTL, nil)
	if err := janitor.Schedule(s.scheduler, s.config.CleanupSchedule); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", s.config.CleanupSchedule, err)
	}
	if _, err := s.scheduler.AddFunc(s.config.CleanupSchedule, func() {
		if n := limiter.Prune(visitorIdle); n > 0 {
			logging.Log.Debugf("pruned %d idle rate limit entries", n)
		}
	}); err != nil {
		return nil, err
	}
	s.scheduler.Start()

	//Register controllers
	roomController := controllers.NewRoomController(s.registry, engine, provider, controllers.RoomSettings{
		DefaultMaxVotes:     s.config.DefaultMaxVotes,
		MaxVotesLimit:       s.config.MaxVotesLimit,
		DefaultVotesPerUser: s.config.DefaultVotesPerUser,
		PasswordLength:      s.config.PasswordLength,
	})
	roomController.RegisterRoutes(r, limiter.Middleware())
	liveController := controllers.NewLiveController(s.registry, hub)
	liveController.RegisterRoutes(r)
	healthController := controllers.NewHealthController(s.registry)
	healthController.RegisterRoutes(r)

	return r, nil
}

// Shutdown stops housekeeping and flushes pending writes.
func (s *Server) Shutdown() {
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}
	if s.persister != nil {
		s.persister.Close()
	}
}

func (s *Server) openStorage(ctx context.Context) (storage.RoomStorage, error) {
	switch s.config.Backend {
	case StorageDynamo:
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logging.Log.Errorf("failed to load AWS config: %v", err)
			return nil, err
		}
		logging.Log.Infof("Persisting rooms to DynamoDB table %s", s.config.TableNameRooms)
		return &storage.DynamoRoomStorage{
			Client:    dynamodb.NewFromConfig(cfg),
			TableName: s.config.TableNameRooms,
		}, nil
	case StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     s.config.RedisAddr,
			Password: s.config.RedisPassword,
		})
		logging.Log.Infof("Persisting rooms to Redis at %s", s.config.RedisAddr)
		return storage.NewRedisRoomStorage(ctx, client)
	case StorageMemory, "":
		logging.Log.Info("Rooms are kept in memory only")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.config.Backend)
	}
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
