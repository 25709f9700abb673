package main

import (
	"log"

	"github.com/MrSnakeDoc/disco/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ disco failed to start: %v", err)
	}
}
