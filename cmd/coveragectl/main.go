package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mountly/coverage-backend/internal/cli"
)

func main() {
	_ = godotenv.Load(".env.local")

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
