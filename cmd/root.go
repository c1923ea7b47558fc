package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	var root = &cobra.Command{Use: "partsassist"}

	root.AddCommand(serveCMD(), ingestCMD())
	_ = root.Execute()
}
