package utils

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	UrlPrefix           string
	DbDriver            string
	DbConnectionOptions string
	StateBackend        string
	StateFile           string
	RedisUrl            string
	SentryDsn           string
	LogLevel            string
}

const (
	StateBackendFile  = "file"
	StateBackendRedis = "redis"
)

//walks up the current path to the project root so tests running inside package dirs pick up the same .env
func getRealWorkingDirectory() string {

	reverse := func(pathParts []string) []string {

		for i, j := 0, len(pathParts)-1; i < j; i, j = i+1, j-1 {
			pathParts[i], pathParts[j] = pathParts[j], pathParts[i]
		}
		return pathParts
	}

	potentialWorkingDirectory, _ := os.Getwd()
	reversedPathParts := reverse(strings.Split(potentialWorkingDirectory, "/"))

	realWorkingDirectoryPathParts := make([]string, 0)
	shouldAppend := false
	for _, pathPart := range reversedPathParts {
		if pathPart == "modelmove" {
			shouldAppend = true
		}
		if shouldAppend && len(pathPart) > 0 {
			realWorkingDirectoryPathParts = append(realWorkingDirectoryPathParts, pathPart)
		}
	}
	if len(realWorkingDirectoryPathParts) == 0 {
		return potentialWorkingDirectory
	}
	return "/" + strings.Join(reverse(realWorkingDirectoryPathParts), "/")

}

func GetConfig() *AppConfig {

	godotenv.Load(getRealWorkingDirectory() + "/.env")

	var appConfig = AppConfig{
		UrlPrefix:           "/modelmove",
		DbDriver:            "postgres",
		DbConnectionOptions: "host=localhost port=5432 dbname=modelmove sslmode=disable",
		StateBackend:        StateBackendFile,
		StateFile:           "./schema_state.json",
		RedisUrl:            "redis://localhost:6379/0",
		LogLevel:            "info",
	}

	if urlPrefix := os.Getenv("URL_PREFIX"); len(urlPrefix) > 0 {
		appConfig.UrlPrefix = urlPrefix
	}

	if dbDriver := os.Getenv("DB_DRIVER"); len(dbDriver) > 0 {
		appConfig.DbDriver = dbDriver
	}

	if dbConnectionOptions := os.Getenv("DB_CONNECTION_OPTIONS"); len(dbConnectionOptions) > 0 {
		appConfig.DbConnectionOptions = dbConnectionOptions
	}

	if stateBackend := os.Getenv("STATE_BACKEND"); len(stateBackend) > 0 {
		appConfig.StateBackend = stateBackend
	}

	if stateFile := os.Getenv("STATE_FILE"); len(stateFile) > 0 {
		appConfig.StateFile = stateFile
	}

	if redisUrl := os.Getenv("REDIS_URL"); len(redisUrl) > 0 {
		appConfig.RedisUrl = redisUrl
	}

	appConfig.SentryDsn = os.Getenv("SENTRY_DSN")

	if logLevel := os.Getenv("LOG_LEVEL"); len(logLevel) > 0 {
		appConfig.LogLevel = logLevel
	}

	return &appConfig
}
