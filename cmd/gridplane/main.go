package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NissesSenap/gridplane/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteWithContext(ctx); err != nil {
		log.Fatal(err)
	}
}
