package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by all subcommands.
type app struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "stockctl",
		Short: "Inspect and edit inventory CSV files",
		Long: `stockctl loads an inventory CSV, detects its stock column, and lets you
search, sort, edit and export it from the terminal. The analyze command asks
a question about the file using the Gemini API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./stockctl.yaml or ~/.config/stockctl/stockctl.yaml)")
	root.PersistentFlags().Int64(cfgKeyMaxFileSize, 0, "maximum input size in bytes")

	root.AddCommand(
		newViewCmd(a),
		newGuessCmd(a),
		newEditCmd(a),
		newAnalyzeCmd(a),
		newBrowseCmd(a),
	)
	return root
}
