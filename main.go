// @title Catch The Mole API
// @version 1.0
// @description Backend API for post-match "find the mole" voting rooms

// @securityDefinitions.apikey Fingerprint
// @in header
// @name X-User-Fingerprint
package main

import (
	_ "github.com/alex-pricope/catch-the-mole/docs"

	"github.com/alex-pricope/catch-the-mole/api"
	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"strings"
)

func main() {
	// Optional .env for local runs
	envErr := godotenv.Load()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configErr := viper.ReadInConfig()

	logging.BoostrapLogger()
	if envErr != nil {
		logging.Log.Debugf("No .env file loaded: %v", envErr)
	}
	if configErr != nil {
		logging.Log.Errorf("Failed to read config file: %v", configErr)
		panic("Failed to read config file: " + configErr.Error())
	}

	// Read config
	config := api.ReadConfig()
	logging.SetLevel(config.LogLevel)

	// Start the service (inside the lambda when deployed)
	service := api.NewServer(config)
	service.Start()
}
