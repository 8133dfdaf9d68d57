package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/revtui/revtui/internal/core/unidiff"
	"github.com/revtui/revtui/internal/core/vcs"
	"github.com/revtui/revtui/pkg/executil"
)

type LogCmd struct {
	flags *Flags
	limit int
}

// NewLogCmd creates the log command.
func NewLogCmd(flags *Flags) *LogCmd {
	return &LogCmd{flags: flags}
}

// Register adds the log command to the application.
func (cmd *LogCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "log",
		Usage: "List recent commits, useful for picking a --range",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "number of commits to list",
				Value:       20,
				Destination: &cmd.limit,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *LogCmd) run(ctx context.Context, c *cli.Command) error {
	exec := &executil.RealExecutor{}
	backend, err := vcs.Detect(ctx, exec, unidiff.NewParser(nil), cmd.flags.Config.VCSOrder)
	if err != nil {
		return err
	}

	commits, err := backend.RecentCommits(ctx, cmd.limit)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	for _, commit := range commits {
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			commit.ShortID,
			commit.Time.Format("2006-01-02"),
			commit.Author,
			commit.Summary,
		)
	}
	return nil
}
