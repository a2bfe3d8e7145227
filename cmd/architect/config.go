package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/architect/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify architect configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.
List values such as workspace.ignore take a comma-separated value.

Configuration is stored at ~/.config/architect/config.yaml
Project-specific overrides can be placed in .architect.yaml
Environment variables override both, e.g. ARCHITECT_RETRIEVAL_TOP_K=4`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			return displayAllConfig(out, cfg)
		case 1:
			value, err := config.Get(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		default:
			return setConfigKey(out, cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(out io.Writer, c *config.Config) error {
	for _, key := range config.Keys() {
		value, err := config.Get(c, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", key, value)
	}
	fmt.Fprintf(out, "\n(config file: %s)\n", configFilePath())
	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Fprintf(out, "(project overrides from %s)\n", project)
	}
	return nil
}

// setConfigKey sets a configuration value and saves the config to the
// --config file when given, the user config file otherwise.
func setConfigKey(out io.Writer, c *config.Config, key, value string) error {
	if err := config.Set(c, key, value); err != nil {
		return err
	}

	var err error
	if configPath != "" {
		err = config.SaveTo(c, configPath)
	} else {
		err = config.Save(c)
	}
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "Set %s = %s in %s\n", key, value, configFilePath())
	return nil
}

// configFilePath is the file config changes are written to.
func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return config.GetUserConfigPath()
}
