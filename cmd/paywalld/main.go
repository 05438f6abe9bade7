package main

import (
	"flag"
	"os"

	log "github.com/golang/glog"
	"github.com/joho/godotenv"

	"github.com/sazalo101/paywall/pkg/paywallmain"
	"github.com/sazalo101/paywall/pkg/utils"
)

func main() {
	_ = godotenv.Load() // nolint: gosec

	config := &utils.PaywallConfig{}
	flag.Usage = func() {
		config.OutputUsage()
		os.Exit(0)
	}
	flag.Parse()

	err := config.PopulateFromEnv()
	if err != nil {
		config.OutputUsage()
		log.Errorf("Invalid paywall config: err: %v\n", err)
		os.Exit(2)
	}

	persisters, err := paywallmain.InitPersisters(config)
	if err != nil {
		log.Errorf("Error initializing persister: err: %v", err)
		os.Exit(2)
	}

	paywallmain.SetupKillNotify(persisters)

	err = paywallmain.PaywallMain(config, persisters)
	if err != nil {
		log.Errorf("Error running paywall: err: %v", err)
		os.Exit(2)
	}
}
