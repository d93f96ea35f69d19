package cmd

import (
	"fmt"
	"io"

	"pagekit/internal/version"

	"github.com/spf13/cobra"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for Go version, host and instance details.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd.OutOrStdout(), version.GetInfo(), extended)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}

func printVersion(w io.Writer, info version.Info, extended bool) error {
	if _, err := fmt.Fprintln(w, info.String()); err != nil {
		return err
	}
	if !extended {
		return nil
	}
	_, err := fmt.Fprintf(w, "Go: %s\nHost: %s\nInstance: %s\n", info.GoVersion, info.Hostname, info.InstanceID)
	return err
}
