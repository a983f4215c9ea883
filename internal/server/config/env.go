package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv loads envFile into the process environment (existing variables
// win) and overlays Config with the recognized variables:
//
//	HOST_ADDR, API_PREFIX, DATABASE_URL, DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
//	SECRET_KEY, ALGORITHM, ACCESS_TOKEN_EXPIRE_MINUTES, BCRYPT_COST,
//	DEFAULT_PAGE_SIZE, MAX_PAGE_SIZE, APP_NAME, APP_VERSION, DEBUG,
//	CORS_ALLOW_ORIGINS, SHUTDOWN_TIMEOUT
//
// A missing envFile is not an error. Malformed values panic, as flags do.
func parseEnv(config *Config, envFile string) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	envString("HOST_ADDR", &config.EndpointAddrHTTP)
	envString("API_PREFIX", &config.APIPrefix)
	envString("DATABASE_URL", &config.DatabaseDSN)
	envInt("DB_MAX_OPEN_CONNS", &config.MaxOpenConns)
	envInt("DB_MAX_IDLE_CONNS", &config.MaxIdleConns)
	envString("SECRET_KEY", &config.SecretKey)
	envString("ALGORITHM", &config.SigningAlgorithm)

	minutes := int(config.AccessTokenValidityDuration.Minutes())
	envInt("ACCESS_TOKEN_EXPIRE_MINUTES", &minutes)
	config.AccessTokenValidityDuration = time.Duration(minutes) * time.Minute

	envInt("BCRYPT_COST", &config.BcryptCost)
	envInt("DEFAULT_PAGE_SIZE", &config.DefaultPageSize)
	envInt("MAX_PAGE_SIZE", &config.MaxPageSize)
	envString("APP_NAME", &config.AppName)
	envString("APP_VERSION", &config.AppVersion)
	envBool("DEBUG", &config.Debug)
	envString("CORS_ALLOW_ORIGINS", &config.CORSAllowOrigins)
	envDuration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v, ok := os.LookupEnv(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(name + ": " + err.Error())
		}
		*dst = n
	}
}

func envBool(name string, dst *bool) {
	if v, ok := os.LookupEnv(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(name + ": " + err.Error())
		}
		*dst = b
	}
}

func envDuration(name string, dst *time.Duration) {
	if v, ok := os.LookupEnv(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(name + ": " + err.Error())
		}
		*dst = d
	}
}
