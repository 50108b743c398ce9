package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/skudadmin/internal/client/cli"
	"github.com/dmitrijs2005/skudadmin/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()

	cmd := cli.NewRootCmd(cfg)
	cmd.SetArgs(cli.CommandArgs())

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}

}
