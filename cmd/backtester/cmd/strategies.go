package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/strategies"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the built-in strategies and their parameters",
	Long: `List every registered strategy. With a name argument, print that
strategy's parameter schema with defaults and bounds.

Examples:
  backtester strategies
  backtester strategies sma-cross`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStrategies,
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}

func runStrategies(cmd *cobra.Command, args []string) error {
	registry := strategies.NewDefaultRegistry()

	if len(args) == 0 {
		for _, name := range registry.List() {
			fmt.Println(name)
		}
		return nil
	}

	name := args[0]
	schema, err := registry.Schema(name)
	if err != nil {
		return err
	}

	fmt.Printf("%s parameters:\n", name)
	for _, p := range schema {
		kind := "float"
		if p.Type == strategies.ParamInt {
			kind = "int"
		}
		fmt.Printf("  %-12s %-6s default=%-8g range=[%g, %g]  %s\n",
			p.Name, kind, p.Default, p.Min, p.Max, p.Help)
	}
	return nil
}
