package cmd

import (
	"fmt"
	"log"

	"github.com/josephlewis42/osh/core/shell"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

type stageView struct {
	Args []string `json:"args"`
	In   string   `json:"in,omitempty"`
	Out  string   `json:"out,omitempty"`
}

type lineView struct {
	Line          string      `json:"line"`
	Background    bool        `json:"background,omitempty"`
	RepeatHistory bool        `json:"repeat_history,omitempty"`
	Stages        []stageView `json:"stages,omitempty"`
}

func newLineView(line *shell.Line) lineView {
	if line.RepeatHistory {
		return lineView{Line: "!!", RepeatHistory: true}
	}

	view := lineView{Line: line.Head.String(), Background: line.Head.Background}
	for _, stage := range line.Head.Stages() {
		args := stage.Args
		if args == nil {
			args = []string{}
		}
		view.Stages = append(view.Stages, stageView{Args: args, In: stage.RedirectIn, Out: stage.RedirectOut})
	}
	return view
}

// parseCmd shows how a line would be split into stages without running it.
var parseCmd = &cobra.Command{
	Use:   "parse LINE",
	Short: "Show the stages a command line parses into.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfigOrDefault(log.New(cmd.ErrOrStderr(), "[osh] ", 0))
		if err != nil {
			return err
		}

		parsed, err := shell.NewParser(cfg.MaxArgs, cfg.MaxStages).Parse(args[0])
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(newLineView(parsed))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
