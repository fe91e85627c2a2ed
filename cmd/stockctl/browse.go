package main

import (
	"path/filepath"

	"github.com/JonMunkholm/stockpilot/internal/application"
	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/JonMunkholm/stockpilot/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "browse <file>",
		Short: "Open the interactive grid",
		Long: `browse opens a terminal grid over the file.

Keys: / search, s sort by the current column, enter edit the stock cell,
u undo, ctrl+s export, m menu, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readText(args[0])
			if err != nil {
				return err
			}

			ws, err := session.NewManager(session.Options{MaxWorkspaces: 1}).Create(filepath.Base(args[0]), text)
			if err != nil {
				return err
			}

			if out == "" {
				out = filepath.Join(filepath.Dir(args[0]), core.ExportFileName)
			}
			m, err := application.New(ws, out)
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "export path (default: "+core.ExportFileName+" next to the input)")
	return cmd
}
