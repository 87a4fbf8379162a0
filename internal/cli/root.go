// Package cli implements the roadbook command line: one-shot route and
// match requests against a directions service, and the serve mode.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgefn/roadbook/internal/dirserver"
	"github.com/edgefn/roadbook/internal/version"
)

func Run(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "roadbook",
		Short:         "roadbook directions client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newRouteCmd(),
		newMatchCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the directions facade over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dirserver.Run(cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "roadbook.yaml", "config yaml path")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(os.Stdout, version.Get())
		},
	}
}
