package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockplan/blockplan/pkg/config"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <layout.yaml>",
		Short: "Validate a layout file without planning",
		Long: `Validate a layout file without computing a plan.

Checks YAML syntax, field constraints, and cross-references (parents,
members, and operation targets must name declared devices).`,
		Example: `  blockplan validate layout.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := config.NewParser().ParseFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: valid (%d devices, %d operations)\n",
				args[0], len(layout.Devices), len(layout.Operations))
			return nil
		},
	}
	return cmd
}
