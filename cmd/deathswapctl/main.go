// Package main runs one deathswapctl command against a deathswap server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	ctlcmd "github.com/louisbranch/deathswap/internal/cmd/deathswapctl"
	"github.com/louisbranch/deathswap/internal/platform/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		config.Exitf("load .env: %v", err)
	}
	fs := flag.NewFlagSet("deathswapctl", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprintln(fs.Output(), ctlcmd.Usage) }
	cfg, err := ctlcmd.ParseConfig(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, ctlcmd.ErrUsage) {
			config.Exitf("%v\n%s", err, ctlcmd.Usage)
		}
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctlcmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("deathswapctl %s: %v", cfg.Command, err)
	}
}
