// Package main is the entry point for the port-guardian CLI.
//
// Usage:
//
//	port-guardian serve -c config.yaml    # Start the monitor daemon
//	port-guardian validate -c config.yaml # Validate configuration
//	port-guardian version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "port-guardian",
	Short: "TCP/UDP port reachability monitor with webhook alerts",
	Long: `Port-guardian probes configured TCP and UDP endpoints on a fixed
interval and sends a webhook notification whenever an endpoint
transitions between up and down.

Quick start:
  1. Create a config file (config.yaml or config.json)
  2. Run: port-guardian serve -c config.yaml

Example config:
  check_interval: 60
  timeout: 5
  servers:
    - name: web
      host: example.com
      port: 443
      protocol: tcp
  webhook:
    enabled: true
    url: https://open.feishu.cn/open-apis/bot/v2/hook/xxx
    retry_count: 3
    retry_interval: 5`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("port-guardian %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
