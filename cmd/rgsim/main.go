// Package main runs the robot game turn simulator.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	rgsimcmd "github.com/louisbranch/rgsimulator/internal/cmd/rgsim"
	platformcmd "github.com/louisbranch/rgsimulator/internal/platform/cmd"
	"github.com/louisbranch/rgsimulator/internal/platform/config"
)

func main() {
	cfg, err := rgsimcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	log.SetPrefix("[RGSIM] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceSim, func(ctx context.Context) error {
		return rgsimcmd.Run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
