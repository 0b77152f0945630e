package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/gitpulse/internal/config"
	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/ctxutil"
	"github.com/mrz1836/gitpulse/internal/logging"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect gitpulse configuration",
	}
	cmd.AddCommand(newConfigShowCmd(a))
	root.AddCommand(cmd)
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective gitpulse configuration with source annotations.

Each value is annotated with where it came from:
  - default: Built-in default value
  - global: From ~/.gitpulse/config.yaml
  - project: From .gitpulse/config.yaml
  - env: From a GITPULSE_* environment variable

Examples:
  gitpulse config show
  gitpulse config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), a)
		},
	}
}

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault ConfigSource = "default"
	// SourceGlobal indicates the value came from global config.
	SourceGlobal ConfigSource = "global"
	// SourceProject indicates the value came from project config.
	SourceProject ConfigSource = "project"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
)

// ConfigValueWithSource represents a configuration value with its source.
type ConfigValueWithSource struct {
	Key    string       `json:"key"`
	Value  any          `json:"value"`
	Source ConfigSource `json:"source"`
}

// runConfigShow prints the effective configuration.
func runConfigShow(ctx context.Context, w io.Writer, a *app) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	values := annotateConfig(a.cfg, loadGlobalConfigOnly(), loadProjectConfigOnly())

	if a.flags.Output == OutputJSON {
		return encodeJSONIndented(w, values)
	}
	return outputYAML(w, values)
}

// annotateConfig lists every configuration key in file order with its
// effective value and source.
func annotateConfig(cfg *config.Config, globalCfg, projectCfg configValues) []ConfigValueWithSource {
	entries := []struct {
		key   string
		value any
	}{
		{"git.path", cfg.Git.Path},
		{"git.extra_configs", cfg.Git.ExtraConfigs},
		{"git.slow_call_threshold", cfg.Git.SlowCallThreshold.String()},
		{"git.environment", maskEnvironment(cfg.Git.Environment)},
		{"watch.repository_debounce", cfg.Watch.RepositoryDebounce.String()},
		{"watch.file_system_debounce", cfg.Watch.FileSystemDebounce.String()},
		{"watch.ignore_fetch_head", cfg.Watch.IgnoreFetchHead},
		{"log.file_enabled", cfg.Log.FileEnabled},
	}

	out := make([]ConfigValueWithSource, 0, len(entries))
	for _, e := range entries {
		out = append(out, ConfigValueWithSource{
			Key:    e.key,
			Value:  e.value,
			Source: determineSource(e.key, globalCfg, projectCfg),
		})
	}
	return out
}

// maskEnvironment hides values of sensitive environment variables.
func maskEnvironment(env []string) []string {
	if len(env) == 0 {
		return env
	}
	out := make([]string, len(env))
	for i, kv := range env {
		name, value, _ := strings.Cut(kv, "=")
		out[i] = name + "=" + logging.SafeValue(name, value)
	}
	return out
}

// configValues holds the dotted keys set in one config file.
type configValues map[string]struct{}

// loadGlobalConfigOnly loads only the global config for source comparison.
func loadGlobalConfigOnly() configValues {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return nil
	}
	return loadConfigFile(path)
}

// loadProjectConfigOnly loads only the project config for source comparison.
func loadProjectConfigOnly() configValues {
	return loadConfigFile(config.ProjectConfigPath())
}

// loadConfigFile records which dotted keys a YAML config file sets.
func loadConfigFile(path string) configValues {
	data, err := os.ReadFile(path) //nolint:gosec // Config file path
	if err != nil {
		return nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}

	result := make(configValues)
	flattenKeys("", raw, result)
	return result
}

func flattenKeys(prefix string, m map[string]any, out configValues) {
	for k, v := range m {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		out[key] = struct{}{}
		if nested, ok := v.(map[string]any); ok {
			flattenKeys(key, nested, out)
		}
	}
}

// determineSource determines where a configuration value came from.
func determineSource(key string, globalCfg, projectCfg configValues) ConfigSource {
	envKey := constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if envVal := os.Getenv(envKey); envVal != "" {
		return SourceEnv
	}
	if _, ok := projectCfg[key]; ok {
		return SourceProject
	}
	if _, ok := globalCfg[key]; ok {
		return SourceGlobal
	}
	return SourceDefault
}

// outputYAML renders the values as a YAML document with a source comment on
// every value.
func outputYAML(w io.Writer, values []ConfigValueWithSource) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	sections := make(map[string]*yaml.Node)

	for _, v := range values {
		section, leaf, _ := strings.Cut(v.Key, ".")
		body, ok := sections[section]
		if !ok {
			body = &yaml.Node{Kind: yaml.MappingNode}
			sections[section] = body
			doc.Content = append(doc.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: section},
				body,
			)
		}

		valueNode := &yaml.Node{}
		if err := valueNode.Encode(v.Value); err != nil {
			return fmt.Errorf("failed to encode %s: %w", v.Key, err)
		}
		// Lists render inline so every entry stays on one line with its source.
		if valueNode.Kind == yaml.SequenceNode {
			valueNode.Style = yaml.FlowStyle
		}
		valueNode.LineComment = "# " + string(v.Source)
		body.Content = append(body.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: leaf}, valueNode)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
