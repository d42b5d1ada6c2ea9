package cmd

import (
	"fmt"

	"github.com/mastermindon/cadence/engine/backend"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe GPU capability and report the backend that would be selected",
	Long: `Run the one-time backend capability probe without starting the frame
loop. Reports whether the WGPU backend is usable on this machine and
which backend a normal startup would commit to.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().Bool("fallback-adapter", false, "Request a software/fallback adapter")
}

func runProbe(cmd *cobra.Command, args []string) error {
	forceFallback, _ := cmd.Flags().GetBool("fallback-adapter")

	selector := backend.NewSelector(
		backend.WithProbe(backend.WGPUProbe(forceFallback)),
		backend.WithFallbackSanctioned(true),
	)
	defer selector.Release()

	selected, err := selector.Select()
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\n", selected)
	if selected.RequiresCommandBuffers() {
		fmt.Fprintln(cmd.OutOrStdout(), "gpu probe: ok")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "gpu probe: unavailable, null backend selected")
	}
	return nil
}
