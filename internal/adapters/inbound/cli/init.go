package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/settings"
)

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Generate a .harmonizer.json settings file",
		Long:  "Write the default settings to .harmonizer.json in the project directory. An existing file is left untouched.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			name := settings.FileNames[0]
			if err := settings.WriteDefault(filepath.Join(absPath, name)); err != nil {
				if errors.Is(err, settings.ErrExists) {
					return usageError(fmt.Errorf("%s already exists", name))
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", name)
			return nil
		},
	}
}
