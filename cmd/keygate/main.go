package main

import (
	"context"
	"log"
	"os"

	"github.com/aussiebroadwan/keygate/internal/keygate/app"
)

func main() {
	cfg := app.LoadConfig()

	application := app.New(cfg)

	if err := application.Run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("keygate: %v", err)
	}
}
