package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	psacmd "github.com/cardecon/hfpsa/internal/cmd/hfpsa"
)

func main() {
	cfg, err := psacmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[HFPSA] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := psacmd.Run(ctx, cfg); err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
}
