package cmd

import (
	"fmt"

	"github.com/mastermindon/cadence/engine/window"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List connected monitors and their refresh rates",
	RunE:  runDisplays,
}

func init() {
	rootCmd.AddCommand(displaysCmd)
}

func runDisplays(cmd *cobra.Command, args []string) error {
	monitors, err := window.Monitors()
	if err != nil {
		return err
	}

	out, err := renderMonitors(monitors)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// renderMonitors formats the monitor list as YAML.
func renderMonitors(monitors []window.MonitorInfo) (string, error) {
	if len(monitors) == 0 {
		return "", fmt.Errorf("no monitors detected")
	}
	out, err := yaml.Marshal(monitors)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
