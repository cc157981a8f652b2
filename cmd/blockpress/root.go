package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/eringen/blockpress"
	"github.com/eringen/blockpress/blogapi"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	cfg        blockpress.SiteConfig
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var rootCmd = &cobra.Command{
	Use:     "blockpress",
	Short:   "Serve and edit a block-structured blog",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = blockpress.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the blockpress version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "blockpress %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and prints any error in the error style.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error:")+" "+err.Error())
	}
	return err
}

// apiClient builds a blog API client from the loaded config.
func apiClient() (*blogapi.Client, error) {
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("no API URL: set api_base_url or BLOCKPRESS_API_URL")
	}
	return blogapi.New(cfg.APIBaseURL,
		blogapi.WithTimeout(cfg.APITimeout),
		blogapi.WithToken(cfg.APIToken),
	)
}

func status(cmd *cobra.Command, label, msg string) {
	fmt.Fprintln(cmd.ErrOrStderr(), okStyle.Render("✓")+" "+labelStyle.Render(label)+" "+msg)
}
