// Command etl loads the rainfall, posts and probability sources and builds
// the aligned daily series.
//
// Usage:
//
//	etl run   [--rainfall path] [--posts path] [--probability path] [--stations A,B] [--out bundle.json]
//	etl serve [--rainfall path] [--posts path] [--probability path]
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
