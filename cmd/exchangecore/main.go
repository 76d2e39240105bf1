// Command exchangecore runs the trading core: the matching engine, risk
// guard and dispatch coordinator, fronted by a client-facing HTTP API and,
// when a venue target is configured, a gRPC venue gateway.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "exchangecore",
		Short: "exchangecore runs the trading core's matching, risk and dispatch services",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/exchangecore/config.toml", "path to the TOML config file")
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

var (
	version = "dev"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}
