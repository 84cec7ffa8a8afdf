// Manual smoke test for the environment variable configuration contract.
// Run directly with go run; it does not touch the network.
package main

import (
	"fmt"
	"os"

	"github.com/signalzero/symbolstore/internal/config"
)

func main() {
	fmt.Println("=== Starting Env Config Test ===")

	// Defaults, no file and no environment
	cfg, err := config.LoadConfigWithPath("does-not-exist.json")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Defaults Loaded ===")
	fmt.Printf("Base URL: %s\n", cfg.Store.BaseURL)
	fmt.Printf("API key set: %v\n", cfg.Store.APIKey != "")
	fmt.Printf("Timeout: %v\n", cfg.Timeout())

	// Environment overrides
	os.Setenv("SYMBOL_STORE_BASE_URL", "https://staging.example.com/prod")
	os.Setenv("SYMBOL_STORE_API_KEY", "test-key")

	fmt.Println("\n=== Testing With Environment Overrides ===")

	cfg2, err := config.LoadConfigWithPath("does-not-exist.json")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Base URL: %s\n", cfg2.Store.BaseURL)
	fmt.Printf("API key set: %v\n", cfg2.Store.APIKey != "")

	if cfg2.Store.BaseURL != "https://staging.example.com/prod" {
		fmt.Println("FAIL: SYMBOL_STORE_BASE_URL override not applied")
		os.Exit(1)
	}
	if cfg2.Store.APIKey != "test-key" {
		fmt.Println("FAIL: SYMBOL_STORE_API_KEY override not applied")
		os.Exit(1)
	}

	os.Unsetenv("SYMBOL_STORE_BASE_URL")
	os.Unsetenv("SYMBOL_STORE_API_KEY")

	fmt.Println("\n=== Test Complete ===")
}
