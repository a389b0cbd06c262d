package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/movedao/dao-node/pkg/cli"
	"github.com/movedao/dao-node/pkg/config"
)

func main() {
	local := flag.Bool("local", false, "enables cli to run from the path it's been started from")
	flag.Parse()
	cfg := config.LoadConfig(local)

	daoNodeCLI, err := cli.NewCLI(cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := daoNodeCLI.Execute(); err != nil {
		os.Exit(1)
	}
}
