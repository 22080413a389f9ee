package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"modelmove/logger"
	"modelmove/utils"
)

var appConfig *utils.AppConfig

var rootCmd = &cobra.Command{
	Use:   "modelmove",
	Short: "Schema migrations that move models between apps without touching their tables",
	Long: `modelmove applies declarative schema migrations to Postgres. Besides the standard
operations it provides move operations, which relocate a model or field to another app
while keeping its table, and neutered operations, which change the logical schema only.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.SetLevel(appConfig.LogLevel); err != nil {
			return err
		}
		log.Printf("The logger is initialized: level: '%s', output: '%s'.\n", appConfig.LogLevel, "stdout")
		return nil
	},
}

func init() {
	logger.SetOut(os.Stdout)
	appConfig = utils.GetConfig()
	if len(appConfig.SentryDsn) > 0 {
		if err := sentry.Init(sentry.ClientOptions{Dsn: appConfig.SentryDsn}); err != nil {
			log.Printf("Sentry initialization failed: %v\n", err)
		}
	}
}

func main() {
	defer func() {
		if recovered := recover(); recovered != nil {
			reportAndExit(fmt.Errorf("%v", recovered))
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		reportAndExit(err)
	}
	sentry.Flush(2 * time.Second)
}

func reportAndExit(err error) {
	logger.Error("%s", err.Error())
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
	os.Exit(1)
}
