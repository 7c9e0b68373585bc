package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gatesync/gatesync"
	"github.com/gatesync/gatesync/config"
	"github.com/gatesync/gatesync/logging"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "configuration file location")
	flag.Parse()

	loggers := logging.MakeDefaultLoggers()

	var c config.Config
	if configFile != "" {
		if err := config.LoadConfigFile(&c, configFile, loggers); err != nil {
			loggers.Errorf("Error loading config file: %s", err)
			os.Exit(1)
		}
	}
	if err := config.LoadConfigFromEnvironment(&c, loggers); err != nil {
		loggers.Errorf("Error in configuration: %s", err)
		os.Exit(1)
	}

	client, err := gatesync.NewClient(c, loggers, nil)
	if err != nil {
		loggers.Errorf("Unable to start client: %s", err)
		os.Exit(1)
	}
	loggers.Info("GateSync client started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	loggers.Info("Shutting down")
	client.Close()
}
