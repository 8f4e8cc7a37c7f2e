package api

import (
	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/spf13/viper"
	"strings"
	"sync"
	"time"
)

type Config struct {
	ServerConfig
	RoomsConfig
	OpenDotaConfig
	StorageConfig
	RateLimitConfig
	CORSConfig
}

type ServerConfig struct {
	Port     int
	GinMode  string
	LogLevel string
}

type RoomsConfig struct {
	DefaultMaxVotes     int
	MaxVotesLimit       int
	DefaultVotesPerUser int
	PasswordLength      int
	TTL                 time.Duration
	CleanupSchedule     string
}

type OpenDotaConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HeroesFile string
}

type StorageConfig struct {
	Backend        string
	TableNameRooms string
	RedisAddr      string
	RedisPassword  string
	PersistBuffer  int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type CORSConfig struct {
	AllowedOrigins []string
}

const (
	StorageMemory = "memory"
	StorageDynamo = "dynamo"
	StorageRedis  = "redis"
)

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		ServerConfig: ServerConfig{
			Port:     getIntOrDefault("server.port", 8080),
			GinMode:  getStringOrDefault("server.ginMode", "debug"),
			LogLevel: getStringOrDefault("log.level", "debug"),
		},
		RoomsConfig: RoomsConfig{
			DefaultMaxVotes:     getIntOrDefault("rooms.defaultMaxVotes", 5),
			MaxVotesLimit:       getIntOrDefault("rooms.maxVotesLimit", 100),
			DefaultVotesPerUser: getIntOrDefault("rooms.defaultVotesPerUser", 1),
			PasswordLength:      getIntOrDefault("rooms.passwordLength", 6),
			TTL:                 getDurationOrDefault("rooms.ttl", 24*time.Hour),
			CleanupSchedule:     getStringOrDefault("rooms.cleanupSchedule", "@every 10m"),
		},
		OpenDotaConfig: OpenDotaConfig{
			BaseURL:    getStringOrDefault("opendota.baseURL", "https://api.opendota.com/api"),
			Timeout:    getDurationOrDefault("opendota.timeout", 10*time.Second),
			HeroesFile: getStringOrDefault("opendota.heroesFile", ""),
		},
		StorageConfig: StorageConfig{
			Backend:        strings.ToLower(getStringOrDefault("storage.backend", StorageMemory)),
			TableNameRooms: getStringOrDefault("storage.TableNameRooms", ""),
			RedisAddr:      getStringOrDefault("storage.redisAddr", "localhost:6379"),
			RedisPassword:  getStringOrDefault("storage.redisPassword", ""),
			PersistBuffer:  getIntOrDefault("storage.persistBuffer", 256),
		},
		RateLimitConfig: RateLimitConfig{
			RPS:   getFloatOrDefault("ratelimit.rps", 5),
			Burst: getIntOrDefault("ratelimit.burst", 10),
		},
		CORSConfig: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("cors.allowedOrigins", []string{"*"}),
		},
	}

	// the table has no sensible default, a dynamo deployment must name it
	if conf.Backend == StorageDynamo {
		conf.TableNameRooms = getString("storage.TableNameRooms")
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getFloatOrDefault(name string, def float64) float64 {
	if viper.IsSet(name) {
		v := viper.GetFloat64(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getDurationOrDefault(name string, def time.Duration) time.Duration {
	if viper.IsSet(name) {
		v := viper.GetDuration(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringSliceOrDefault(name string, def []string) []string {
	if viper.IsSet(name) {
		v := viper.GetStringSlice(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
