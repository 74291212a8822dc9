package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd создаёт группу команд для работы с конфигурацией.
func NewConfigCmd(configFn ConfigFn, outputFn OutputFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect pipeline configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(configFn, outputFn),
		newConfigValidateCmd(configFn, outputFn),
	)

	return cmd
}

func newConfigShowCmd(configFn ConfigFn, outputFn OutputFn) *cobra.Command {
	var overrides []string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after applying --set overrides and
environment variables, exactly as a run would see it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			cfg, err := configFn(overrides)
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(cfg)
				return nil
			}

			rendered, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			fmt.Fprint(out.w, string(rendered))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&overrides, "set", nil, "Config override, e.g. etl.min_price=50 (repeatable)")

	return cmd
}

func newConfigValidateCmd(configFn ConfigFn, outputFn OutputFn) *cobra.Command {
	var overrides []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			if _, err := configFn(overrides); err != nil {
				return err
			}

			out.Success("Configuration is valid")
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&overrides, "set", nil, "Config override, e.g. etl.min_price=50 (repeatable)")

	return cmd
}
