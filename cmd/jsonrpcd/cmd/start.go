package cmd

import (
	"github.com/spf13/cobra"
	"github.com/cyking/JsonRPC/pkg/config"
	"github.com/cyking/JsonRPC/internal"
)

var allowDefaults bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "starts jsonrpcd",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadConfig(allowDefaults)
		if err != nil {
			return err
		}

		return internal.Start(&cfg)
	},
}

func init() {
	startCmd.Flags().BoolVar(&allowDefaults, "allow-defaults", false, "start with built-in defaults when no config file exists")
	rootCmd.AddCommand(startCmd)
}
