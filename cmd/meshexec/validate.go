package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dark-Alex-17/meshexec/internal/meshconfig"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Load and validate the command-tree config without starting the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := meshconfig.Load(configFile); err != nil {
			return err
		}
		fmt.Println("config OK")
		return nil
	},
}
