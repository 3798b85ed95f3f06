package commands

import (
	"fmt"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/ui/output"
	"go.trai.ch/weave/internal/ui/style"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "plan <token>",
		Short: "Print the resolution plan of a token without running any binding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(args[0])
			if err != nil {
				return err
			}
			plan, err := c.app.Plan(cmd.Context(), c.file, req)
			if err != nil {
				return err
			}
			return printPlan(cmd, plan)
		},
	}
	flags.register(cmd)
	return cmd
}

func printPlan(cmd *cobra.Command, plan *domain.Plan) error {
	out := output.New(cmd.OutOrStdout())
	header := fmt.Sprintf("plan for %s [%s]", plan.Target, plan.Digest())
	if _, err := out.WriteString(out.String(header).Foreground(termenv.RGBColor(string(style.Iris))).String() + "\n"); err != nil {
		return err
	}

	for i, step := range plan.Steps {
		color := termenv.RGBColor(string(style.Slate))
		switch step.Kind {
		case domain.StepCreate:
			color = termenv.RGBColor(string(style.Green))
		case domain.StepRequestFromParent:
			color = termenv.RGBColor(string(style.Yellow))
		}
		line := fmt.Sprintf("%3d. %s", i+1, step)
		if _, err := out.WriteString(out.String(line).Foreground(color).String() + "\n"); err != nil {
			return err
		}
	}
	return nil
}
