package main

import (
	"context"
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/movedao/dao-node/pkg/config"
	"github.com/movedao/dao-node/pkg/ledger"
	"github.com/movedao/dao-node/pkg/node"
	"github.com/movedao/dao-node/pkg/node/data"
	"github.com/movedao/dao-node/pkg/tx"
)

func main() {
	local := flag.Bool("local", false, "enables node to run from the path it's been started from")
	flag.Parse()
	cfg := config.LoadConfig(local)

	tearDown := data.Init(cfg.DatabasePath)
	defer tearDown()

	service := node.NewService(cfg, ledger.NewClient(cfg), tx.NewHTTPSubmitter(cfg)).
		WithSnapshotter(data.DefaultStore())

	if err := service.Bootstrap(context.Background()); err != nil {
		log.Errorf("initial sync failed due to error: %v", err)
	}

	node.InitServerAndController(service, cfg.APIHost, cfg.APIPort).Run()
}
