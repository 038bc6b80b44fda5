package main

import (
	"os"

	"paper-analytics/config"
	"paper-analytics/internal/server"
	"paper-analytics/log"

	"go.uber.org/zap"
)

func main() {
	if _, handled, exitCode := handleCLIFlags(os.Args[1:], os.Stderr); handled {
		os.Exit(exitCode)
	}

	log.InitLogger()
	defer log.GetLogger().Sync()

	var err error
	if !config.LoadConfig() {
		return
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid configuration", zap.Error(err))
		return
	}

	if err = server.StartBackend(); err != nil {
		log.GetLogger().Error("backend exited with error", zap.Error(err))
		os.Exit(1)
	}
}
