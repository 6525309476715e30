package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X smarttime/internal/cli.Version=...".
var (
	Version   = "0.1.0"
	GitCommit = "development"
	BuildDate = "unknown"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			printf(cmd, "smarttime v%s\n", Version)
			printf(cmd, "  Git Commit: %s\n", GitCommit)
			printf(cmd, "  Build Date: %s\n", BuildDate)
			printf(cmd, "  Go Version: %s\n", runtime.Version())
			printf(cmd, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
