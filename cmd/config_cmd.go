package cmd

import (
	"fmt"
	"io"

	"github.com/AutumnsGrove/gw/internal/config"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and initialize gw configuration",
	Long: `Config provides subcommands for the gw configuration file.

gw reads $GW_ROOT/.gw.yaml when GW_ROOT is set and the file exists,
otherwise ~/.config/gw/config.yaml. GW_* environment variables override
file values.

Examples:
  gw config init
  gw config init --template agent --force
  gw config show
  gw config validate`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration from a template",
	Long: `Init creates a new configuration file from a template.

Available templates:
  default  Interactive use with human-readable output
  agent    Agent sessions: JSON output, agent mode, quiet JSON logs`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

// Flags for config subcommands.
var (
	initTemplate string
	initForce    bool
	initPath     string
)

func init() {
	configInitCmd.Flags().StringVar(&initTemplate, "template", "default", "config template: default or agent")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	configInitCmd.Flags().StringVar(&initPath, "path", "", "file to write (default: project or user config path)")

	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		path = cfgFile
	}

	written, err := config.WriteTemplate(initTemplate, path, initForce)
	if err != nil {
		return err
	}

	p := newPrinter()
	if p.JSON {
		return p.Record(map[string]string{"template": initTemplate, "path": written}, nil)
	}
	p.Success("Created config from %q template at %s", initTemplate, written)
	return nil
}

// configRecord is the JSON form of the effective configuration.
type configRecord struct {
	File   string         `json:"file,omitempty"`
	Root   string         `json:"root,omitempty"`
	Config *config.Config `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	p := newPrinter()
	return p.Record(configRecord{File: Cfg.File, Root: Cfg.Root, Config: Cfg}, func(w io.Writer) error {
		source := Cfg.File
		if source == "" {
			source = "(defaults)"
		}
		fmt.Fprintf(w, "# source: %s\n", source)
		if overlay := Cfg.RulesOverlayPath(); overlay != "" {
			fmt.Fprintf(w, "# rules overlay: %s\n", overlay)
		}
		data, err := yaml.Marshal(Cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = w.Write(data)
		return err
	})
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	p := newPrinter()
	err := Cfg.Validate()

	rec := struct {
		File  string `json:"file,omitempty"`
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	}{File: Cfg.File, Valid: err == nil}
	if err != nil {
		rec.Error = err.Error()
	}

	if p.JSON {
		if rerr := p.Record(rec, nil); rerr != nil {
			return rerr
		}
		if err != nil {
			return errReported
		}
		return nil
	}
	if err != nil {
		return err
	}
	p.Success("Configuration is valid.")
	return nil
}
