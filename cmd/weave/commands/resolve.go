package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "resolve <token>",
		Short: "Resolve a token and print its value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args[0])
			if err != nil {
				return err
			}
			v, err := c.app.Resolve(cmd.Context(), c.file, req)
			if err != nil {
				return err
			}

			// Strings print as-is; everything else as YAML.
			if s, ok := v.(string); ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
				return err
			}
			data, err := yaml.Marshal(v)
			if err != nil {
				return zerr.Wrap(err, "failed to render value")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
