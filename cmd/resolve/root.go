package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"resolution-backend/internal/shared/telemetry"
	"resolution-backend/internal/templates"
	"resolution-backend/internal/values"
)

type rootOptions struct {
	registerPath string
	entitiesFile string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "resolve",
		Short:         "Render and number resolutions from template files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.SetOutput(cmd.ErrOrStderr(), opts.verbose)
		},
	}

	root.PersistentFlags().StringVar(&opts.registerPath, "register", envOr("REGISTER_PATH", "./data/resolution_register.json"), "resolution register file")
	root.PersistentFlags().StringVar(&opts.entitiesFile, "entities", os.Getenv("ENTITIES_FILE"), "entity seed file (YAML or JSON)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug events to stderr")

	root.AddCommand(
		newRenderCmd(opts),
		newValidateCmd(opts),
		newRegisterCmd(opts),
	)
	return root
}

// loadInputs reads a template and an answers file and builds the value store.
func loadInputs(templatePath, valuesPath string) (*templates.Template, *values.Store, error) {
	tpl, err := templates.LoadFile(templatePath)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(valuesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read values %s: %w", valuesPath, err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode values %s: %w", valuesPath, err)
	}
	store, err := values.FromMap(tpl.Meta(), raw)
	if err != nil {
		return nil, nil, err
	}
	return tpl, store, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
