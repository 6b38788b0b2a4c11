package main

import (
	"github.com/kotche/notekeeper/infrastructure/logger"
	"os"
)

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		logger.Log.Error(err)
		os.Exit(1)
	}
}
