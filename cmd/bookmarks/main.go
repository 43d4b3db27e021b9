package main

import (
	"log"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("❌ bookmarks: %v", err)
		os.Exit(1)
	}
}
