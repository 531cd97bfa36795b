// Package scavenge is the cobra command surface over the xfs sweep engine.
package scavenge

import (
	"github.com/spf13/cobra"

	"github.com/go-forensics/xfs-scavenger/log"
)

// NewRootCommand wires the scavenger CLI.
func NewRootCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "xfscavenger",
		Short:         "Read-only forensic scanner for raw XFS images",
		Long:          "xfscavenger decodes inode records straight out of a raw XFS image or block device, without mounting it, and labels each record allocated, probably deleted or short-form directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				return log.EnableDebug()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.AddCommand(NewScanCommand())

	return cmd
}
