package main

import (
	"fmt"
	"log"

	"pmbackend/core"
)

func main() {
	log.Printf("🔑 Generating new agent secret key...")

	// Same format the backend mints on rotation; useful for seeding
	// an organization row by hand.
	apiKey, err := core.NewSecretKey("pma")
	if err != nil {
		log.Fatalf("❌ Failed to generate API key: %v", err)
	}

	fmt.Printf("Generated API Key: %s\n", apiKey)
	log.Printf("✅ Successfully generated agent secret key")
}
