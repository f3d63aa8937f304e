package main

import (
	"log"

	"github.com/isotoolkit/keeper/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ keeper failed to start: %v", err)
	}
}
