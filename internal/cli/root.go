// Package cli wires the cobra command tree.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"research-agent/internal/config"
	"research-agent/internal/di"
	"research-agent/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFiles   []string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "research-agent",
		Short:         "arXiv research assistant with an LLM critic",
		Long:          `Finds academic papers on arXiv with a tool-calling assistant and scores its answers with a rubric-based critic.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default $CONFIG_FILE)")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files loaded in order instead of .env and .env.$APP_ENV")

	cmd.AddCommand(
		newRunCommand(opts),
		newEvaluateCommand(opts),
		newSearchCommand(opts),
		newServeCommand(opts),
		newMCPCommand(opts),
	)
	return cmd
}

func (o *rootOptions) load() (config.Config, error) {
	var envService *env.EnvService
	if len(o.envFiles) > 0 {
		svc, err := env.NewEnvServiceFromFiles(o.envFiles...)
		if err != nil {
			return config.Config{}, err
		}
		envService = svc
	} else {
		envService = env.NewEnvService()
	}

	path := o.configPath
	if path == "" {
		path = envService.Get("CONFIG_FILE")
	}
	return config.Load(path, envService)
}

// container loads the configuration and builds the dependency graph. name
// labels the run's log file.
func (o *rootOptions) container(name string, needLLM bool) (*di.Container, config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, config.Config{}, err
	}
	if needLLM {
		if err := cfg.RequireLLM(); err != nil {
			return nil, config.Config{}, err
		}
	}
	c, err := di.NewContainer(cfg, di.Options{LogName: name})
	if err != nil {
		return nil, config.Config{}, err
	}
	return c, cfg, nil
}

// writeJSONText prints s indented when it is JSON and verbatim otherwise.
func writeJSONText(w io.Writer, s string) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		fmt.Fprintln(w, s)
		return
	}
	fmt.Fprintln(w, buf.String())
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
