package main

import (
	"fmt"
	"os"

	"github.com/benvon/task-tracker/cmd/tasksctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tasksctl",
		Short: "Operator tool for the task tracker API",
		Long:  "CLI tool for applying migrations, minting and inspecting session tokens and listing tasks",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewTokenCmd())
	rootCmd.AddCommand(commands.NewVerifyCmd())
	rootCmd.AddCommand(commands.NewListCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
