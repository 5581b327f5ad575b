// Command mcadmin holds operator tooling for the catalog console.
package main

import (
	"os"

	"github.com/raushankrgupta/marketchoice-admin/config"
	"github.com/raushankrgupta/marketchoice-admin/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logger *logrus.Logger

var rootCmd = &cobra.Command{
	Use:          "mcadmin",
	Short:        "MarketChoice catalog admin tools",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		logger = utils.NewLogger(config.LogLevel)
	},
}

func main() {
	rootCmd.AddCommand(importCmd, hashPasswordCmd, createUserCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
