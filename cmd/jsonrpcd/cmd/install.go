package cmd

import (
	"github.com/spf13/cobra"
	"bufio"
	"os"
	"fmt"
	"strconv"
	"github.com/cyking/JsonRPC/pkg/config"
	"github.com/spf13/viper"
	"strings"
	"path"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "installs jsonrpcd",
	RunE: func(cmd *cobra.Command, args []string) error {
		install()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func install() {
	fmt.Println("Welcome to the jsonrpcd interactive installer.")
	home := prompt(
		"Where do you want to store your jsonrpcd configuration files?",
		viper.GetString(config.FlagHome),
		"",
	)
	portStr := prompt(
		"On what port should jsonrpcd listen?",
		"8080",
		"",
	)
	port, err := strconv.Atoi(portStr)
	if err != nil {
		fmt.Println("Invalid port.")
		os.Exit(1)
	}
	rpcPath := prompt(
		"At what path should jsonrpcd serve JSON-RPC requests?",
		"rpc",
		"",
	)
	detectStr := prompt(
		"Do you want to detect error objects in handler output?",
		"no",
		"yes/no",
	)

	fmt.Print("Creating home directory...")
	maybeBail(os.MkdirAll(home, os.ModeDir|os.ModePerm))
	fmt.Println(" Done.")

	fmt.Print("Writing config file...")
	viper.Set(config.FlagHome, home)
	viper.Set(config.FlagRPCPort, port)
	viper.Set(config.FlagRPCPath, rpcPath)
	viper.Set("detect_output_errors", detectStr == "yes")
	viper.SetConfigFile(path.Join(home, config.DefaultConfigFile))
	maybeBail(viper.WriteConfig())
	fmt.Println(" Done.")
	fmt.Printf("You're all set! To start your server run jsonrpcd --home %s start.\n", home)
}

func prompt(text string, def string, choices string) string {
	choiceMap := make(map[string]bool)
	allowed := strings.Split(choices, "/")
	for _, choice := range allowed {
		choiceMap[choice] = true
	}

	var scan func() string
	scan = func() string {
		scanner := bufio.NewScanner(os.Stdin)
		if def == "" {
			fmt.Printf("%s", text)
		} else {
			if choices == "" {
				fmt.Printf("%s [%s]: ", text, def)
			} else {
				fmt.Printf("%s [%s] (default %s): ", text, choices, def)
			}
		}
		scanner.Scan()
		out := strings.TrimSpace(scanner.Text())
		if out == "" {
			out = def
		}

		if choices != "" && !choiceMap[out] {
			fmt.Println("Invalid choice, please try again")
			return scan()
		}

		return out
	}

	return scan()
}

func maybeBail(err error) {
	if err == nil {
		return
	}

	fmt.Printf(" Failed! Reason: %s\n", err)
	os.Exit(1)
}
