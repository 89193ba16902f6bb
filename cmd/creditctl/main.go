// Command creditctl runs database migrations and manages API keys.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "creditctl",
		Short:         "Operate a CreditFox deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Missing .env files are fine, the process environment still applies.
			_ = env.SetupEnvFile()
		},
	}
	root.AddCommand(newMigrateCommand(), newAPIKeyCommand())
	return root
}
