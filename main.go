package main

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"earningsbot/cmd/executor"
)

func main() {
	defer handlePanic()

	if err := (&executor.Executor{}).Start(); err != nil {
		logger.WithError(err).Error("earningsbot exited")
		os.Exit(1)
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithField("panic", fmt.Sprint(r)).Error("recovered from panic")
		os.Exit(2)
	}
}
