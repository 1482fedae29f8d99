// coredeck is the CLI for the coredeck icon service.
//
// Commands:
//
//	coredeck up         Start coredeckd daemon
//	coredeck down       Stop coredeckd daemon
//	coredeck status     Show daemon status
//	coredeck normalize  Normalize an image file locally
//	coredeck batch      Normalize every image in a directory
//	coredeck icons      Manage saved icons (add, list, show, export, rm)
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/coredeck/coredeck/internal/client"
	"github.com/coredeck/coredeck/internal/config"
	"github.com/coredeck/coredeck/internal/daemon"
	"github.com/coredeck/coredeck/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coredeck",
		Short:         "Normalize and manage tray and menu icons",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newUpCmd())
	root.AddCommand(newDownCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newIconsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func logPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "coredeckd.log")
}

// newClient returns a client for the running daemon, or an error telling
// the user to start it.
func newClient() (*client.Client, error) {
	cfg := config.DefaultConfig()
	if !daemon.IsRunning(cfg.PIDPath) {
		return nil, errors.New("coredeckd is not running. Run 'coredeck up' first")
	}
	return client.New(cfg.SocketPath), nil
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Start coredeckd daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if daemon.IsRunning(cfg.PIDPath) {
				fmt.Fprintln(cmd.OutOrStdout(), "coredeckd is already running")
				return nil
			}

			bin := daemon.FindBinary()
			if bin == "" {
				return errors.New("coredeckd binary not found next to coredeck or in PATH")
			}
			pid, err := daemon.Start(bin, logPath(cfg), cfg.PIDPath, 5*time.Second)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "coredeckd started (pid %d)\n", pid)
			return nil
		},
	}
}

func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Stop coredeckd daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			pid, err := daemon.Stop(cfg.PIDPath, 5*time.Second)
			if errors.Is(err, daemon.ErrNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "coredeckd is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "coredeckd stopped (pid %d)\n", pid)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			st, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:     %s\n", st.Status)
			fmt.Fprintf(out, "Version:    %s\n", st.Version)
			fmt.Fprintf(out, "Platform:   %s\n", st.Platform)
			fmt.Fprintf(out, "Icon size:  %dpx (border %dpx)\n", st.FinalSize, st.Border)
			fmt.Fprintf(out, "Filter:     %s\n", st.Filter)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the coredeck version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coredeck %s\n", version.Version())
		},
	}
}
