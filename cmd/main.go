package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"julianmorley.ca/con-plar/petmart/internal/cli"
)

func main() {
	// .env is optional; real environment variables still apply
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
