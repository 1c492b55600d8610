package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	dudocmd "dudo/internal/cmd/dudo"
)

func main() {
	cfg, err := dudocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dudocmd.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("dudo: %v", err)
	}
}
