package main

import (
	"encoding/json"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configFormat   string
	configValidate bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long:  `Display the configuration after defaults, the config file and environment overrides are applied.`,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configFormat, "format", "yaml", "output format: yaml, json or toml")
	configCmd.Flags().BoolVar(&configValidate, "validate", false, "only validate, don't print")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if configValidate {
		fmt.Fprintln(out, "Configuration is valid")
		return nil
	}
	var data []byte
	switch configFormat {
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case "toml":
		data, err = toml.Marshal(cfg)
	default:
		return fmt.Errorf("unknown format %q", configFormat)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
