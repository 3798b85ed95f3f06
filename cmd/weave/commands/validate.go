package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/weave/internal/ui/style"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	var autobind bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every dependency in the manifest is bound",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Validate(cmd.Context(), c.file, autobind); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid\n", style.Check, c.file)
			return err
		},
	}
	cmd.Flags().BoolVar(&autobind, "autobind", true, "Also check classes that could be autobound")
	return cmd
}
