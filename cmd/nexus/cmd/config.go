package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/nexus/configs"
	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/output"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user configuration",
		Long: `Manage the user configuration file.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/nexus/config.yaml)
  3. --config <file>
  4. Environment variables (NEXUS_*)

A running instance reloads the user config and the --config file when
they change, or on SIGHUP.`,
		Example: `  # Create user config from template
  nexus config init

  # Show effective configuration
  nexus config show

  # Print user config file path
  nexus config path

  # Roll back the last upgrade
  nexus config restore`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the user configuration file from a template.

With --force an existing file is backed up, then rewritten with any
options it predates filled in. Existing settings are kept.`,
		Example: `  nexus config init
  nexus config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upgrade an existing configuration")

	return cmd
}

func newConfigShowCmd(g *globalOptions) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, g.configPath, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "restore [backup]",
		Short: "Restore user configuration from a backup",
		Long: `Replace the user configuration with a backup written by 'config init --force'.

Without an argument the newest backup is used. The current file is backed
up before it is replaced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigRestore(cmd, args, list)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List available backups, newest first")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	userPath := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("📁", "Location: %s", userPath)
			out.Newline()
			out.Status("💡", "Use --force to upgrade with new defaults (preserves your settings)")
			return nil
		}
		return runConfigUpgrade(out, userPath)
	}

	if err := os.MkdirAll(config.GetUserConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(userPath, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", userPath)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Add the folders you want searchable under index.file_dirs")
	out.Status("", "  2. Run 'nexus config show' to verify")
	return nil
}

// runConfigUpgrade backs up the existing file and fills in missing options.
func runConfigUpgrade(out *output.Writer, userPath string) error {
	backupPath, err := config.BackupUserConfig()
	if err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	data, err := os.ReadFile(userPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	existing := &config.Config{}
	if err := yaml.Unmarshal(data, existing); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	added := existing.MergeNewDefaults()
	if err := existing.WriteYAML(userPath); err != nil {
		return fmt.Errorf("failed to write upgraded config: %w", err)
	}

	out.Success("Configuration upgraded")
	out.Statusf("📁", "Location: %s", userPath)
	out.Statusf("💾", "Backup: %s", backupPath)
	out.Newline()
	if len(added) > 0 {
		out.Status("✨", "New options added with defaults:")
		for _, field := range added {
			out.Statusf("", "  - %s", field)
		}
	} else {
		out.Status("✓", "Your configuration is already up to date")
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, configPath string, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	var cfg *config.Config
	switch source {
	case "merged":
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	case "defaults":
		cfg = config.NewConfig()
	default:
		return fmt.Errorf("invalid source: %s (use: merged, defaults)", source)
	}

	if jsonOutput {
		return out.JSON(cfg)
	}

	desc := "defaults"
	if files := config.Files(configPath); source == "merged" && len(files) > 0 {
		desc = "defaults + " + strings.Join(files, " + ")
	}
	out.Statusf("📋", "Configuration source: %s", desc)
	out.Newline()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigRestore(cmd *cobra.Command, args []string, list bool) error {
	out := output.New(cmd.OutOrStdout())

	backups, err := config.ListUserConfigBackups()
	if err != nil {
		return err
	}
	if list {
		if len(backups) == 0 {
			out.Status("", "No backups")
		}
		for _, b := range backups {
			out.Status("", b)
		}
		return nil
	}

	var target string
	switch {
	case len(args) == 1:
		target = args[0]
	case len(backups) > 0:
		target = backups[0]
	default:
		return fmt.Errorf("no backups found next to %s", config.GetUserConfigPath())
	}

	if err := config.RestoreUserConfig(target); err != nil {
		return err
	}
	out.Success("Configuration restored")
	out.Statusf("💾", "From: %s", target)
	return nil
}
