package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipet-dev/pipet/internal/codegen"
)

var sourceCmd = &cobra.Command{
	Use:          "source EXPRESSION",
	Short:        "Print the generated program for an expression",
	Long:         `Generate the program a pipeline expression compiles to and print it without compiling or executing.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("requires exactly one expression argument")
		}

		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := codegen.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		return printSource(codegen.Expression{Text: args[0], Mode: mode})
	},
}
