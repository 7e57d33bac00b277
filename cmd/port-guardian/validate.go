package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZSanhu/port-guardian/pkg/alerts"
	"github.com/ZSanhu/port-guardian/pkg/config"
	"github.com/ZSanhu/port-guardian/pkg/models"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a configuration file without starting the monitor.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  port-guardian validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	var cfg config.Config
	if err := config.LoadAndValidate(configFile, &cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	tcp, udp := 0, 0

	for _, ep := range cfg.Endpoints() {
		if ep.Protocol == models.ProtocolUDP {
			udp++
		} else {
			tcp++
		}
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Check interval: %s\n", cfg.CheckInterval.Duration())
	fmt.Printf("  Probe timeout:  %s\n", cfg.Timeout.Duration())
	fmt.Printf("  Servers:        %d tcp + %d udp = %d total\n", tcp, udp, tcp+udp)

	if cfg.Webhook.Enabled {
		fmt.Printf("  Webhook:        %s (%s)\n", cfg.Webhook.URL, alerts.DetectPlatform(cfg.Webhook.URL))
	} else {
		fmt.Printf("  Webhook:        disabled\n")
	}

	return nil
}
