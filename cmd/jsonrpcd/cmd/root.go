package cmd

import (
	"github.com/spf13/cobra"
	"fmt"
	"os"
	"github.com/cyking/JsonRPC/pkg/config"
	"github.com/spf13/viper"
)

var home string
var rootCmd = &cobra.Command{
	Use:   "jsonrpcd",
	Short: "a daemon that serves JSON-RPC 2.0 procedures over HTTP",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&home, config.FlagHome, "", "jsonrpcd home directory")
	viper.BindPFlag(config.FlagHome, rootCmd.PersistentFlags().Lookup(config.FlagHome))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
