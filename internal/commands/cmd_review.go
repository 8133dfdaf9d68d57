package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/revtui/revtui/internal/core/highlight"
	"github.com/revtui/revtui/internal/core/model"
	"github.com/revtui/revtui/internal/core/store"
	"github.com/revtui/revtui/internal/core/unidiff"
	"github.com/revtui/revtui/internal/core/vcs"
	"github.com/revtui/revtui/internal/tui"
	"github.com/revtui/revtui/pkg/executil"
)

type ReviewCmd struct {
	flags *Flags

	revRange    string
	sideBySide  bool
	vcsKind     string
	sessionFile string
}

// NewReviewCmd creates the review command, the default action of the binary.
func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags}
}

// Flags returns the review-specific flags for registration on the root command.
func (cmd *ReviewCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "range",
			Aliases:     []string{"r"},
			Usage:       "review a revision range (base..head) instead of the working tree",
			Destination: &cmd.revRange,
		},
		&cli.BoolFlag{
			Name:        "side-by-side",
			Aliases:     []string{"s"},
			Usage:       "start in the side-by-side layout",
			Destination: &cmd.sideBySide,
		},
		&cli.StringFlag{
			Name:        "vcs",
			Usage:       "force a backend (git, jj, hg) instead of auto-detecting",
			Destination: &cmd.vcsKind,
		},
		&cli.StringFlag{
			Name:        "session-file",
			Usage:       "session path relative to the repository root",
			Destination: &cmd.sessionFile,
		},
	}
}

// Run executes the review TUI. Exported for use as default command.
func (cmd *ReviewCmd) Run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cmd.sideBySide {
		cfg.SideBySide = true
	}
	if cmd.sessionFile != "" {
		cfg.SessionFile = cmd.sessionFile
	}

	var hl unidiff.Highlighter
	if cfg.Highlight.Enabled {
		hl = highlight.New(cfg.Highlight.Style)
	}

	exec := &executil.RealExecutor{}
	parser := unidiff.NewParser(hl)

	order := cfg.VCSOrder
	if cmd.vcsKind != "" {
		order = []vcs.Kind{vcs.Kind(cmd.vcsKind)}
	}

	backend, err := vcs.Detect(ctx, exec, parser, order)
	if err != nil {
		if errors.Is(err, vcs.ErrNotARepository) {
			return fmt.Errorf("no git, jj, or hg repository found in the current directory")
		}
		return err
	}
	info := backend.Info()
	log.Debug().Str("root", info.Root).Str("vcs", string(info.Kind)).Msg("repository detected")

	base := info.Head
	var files model.Changeset
	if cmd.revRange != "" {
		from, to, ok := strings.Cut(cmd.revRange, "..")
		if !ok || from == "" || to == "" {
			return fmt.Errorf("invalid range %q, expected base..head", cmd.revRange)
		}
		base = from
		files, err = backend.RangeDiff(ctx, from, to)
	} else {
		files, err = backend.WorkingTreeDiff(ctx)
	}
	if err != nil {
		if errors.Is(err, unidiff.ErrNoChanges) {
			return cli.Exit("No changes to review.", 1)
		}
		return err
	}

	st := store.New(filepath.Join(info.Root, cfg.SessionFile))

	notice := ""
	session, err := st.Load()
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		session = model.NewReviewSession(info.Root, base)
	case err != nil:
		return err
	case session.BaseRevision != base:
		// The stored session was taken against a different revision. Keep
		// it so comments survive, but tell the user line anchors may be off.
		notice = fmt.Sprintf("resumed session from base %s, anchors may have shifted", shortRev(session.BaseRevision))
	}

	for i := range files {
		session.AddFile(files[i].DisplayPath(), files[i].Status)
	}

	m := tui.New(tui.Options{
		Files:   files,
		Session: session,
		Store:   st,
		Backend: backend,
		Config:  cfg,
		Logger:  log.Logger,
		Notice:  notice,
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run review: %w", err)
	}

	return st.Save(session)
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
