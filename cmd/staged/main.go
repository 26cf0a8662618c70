// cmd/staged/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"staged/internal/config"
	"staged/internal/git"
	"staged/internal/logging"
	"staged/internal/render"
	"staged/internal/watch"
	"staged/internal/workspace"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	repoPath string
	verbose  bool
	noColor  bool

	logger *logging.Logger
	ws     *workspace.Workspace
)

var rootCmd = &cobra.Command{
	Use:   "staged",
	Short: "Staged shows side-by-side diffs between git refs",
	Long: `Staged renders the changes of a file between two git refs (or the working
tree, written "@") as aligned side-by-side panes, and keeps review state
(comments, reviewed files, edits) for each diff.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ws != nil {
			return ws.Close()
		}
		return nil
	},
}

func setup(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}

	var err error
	logger, err = logging.NewCLI(verbose)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return err
	}

	ws, err = workspace.Open(cmd.Context(), repoPath, cfg, logger.Logger)
	if err != nil {
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "C", "", "repository path (default $STAGED_REPO or the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	var diffCmd = &cobra.Command{
		Use:   "diff <path>",
		Short: "Show the side-by-side diff of a file",
		Long: `Show the diff of a file between --base and --head. The head defaults to the
working tree. Use --unified for classic unified output or --json for the full
row model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("base")
			head, _ := cmd.Flags().GetString("head")
			asJSON, _ := cmd.Flags().GetBool("json")
			unified, _ := cmd.Flags().GetBool("unified")
			width, _ := cmd.Flags().GetInt("width")
			follow, _ := cmd.Flags().GetBool("watch")

			path := args[0]
			show := func(w io.Writer) error {
				fd, err := ws.Diffs.Get(cmd.Context(), base, head, path)
				if err != nil {
					return err
				}
				switch {
				case asJSON:
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(fd)
				case unified:
					if fd.Binary {
						_, err := fmt.Fprintln(w, "Binary files differ")
						return err
					}
					return render.Unified(w, path, fd.Hunks)
				default:
					return render.SideBySide(w, fd, render.Options{Width: width})
				}
			}

			if err := show(cmd.OutOrStdout()); err != nil {
				return err
			}
			if !follow {
				return nil
			}
			if head != git.WorkingTree {
				return fmt.Errorf("--watch needs the working tree as head")
			}
			return watchFile(cmd.Context(), path, func() {
				fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")
				if err := show(cmd.OutOrStdout()); err != nil {
					color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), err)
				}
			})
		},
	}
	diffCmd.Flags().String("base", "HEAD", "base ref")
	diffCmd.Flags().String("head", git.WorkingTree, "head ref, @ for the working tree")
	diffCmd.Flags().Bool("json", false, "print the diff as JSON")
	diffCmd.Flags().Bool("unified", false, "print a unified diff")
	diffCmd.Flags().Int("width", terminalWidth(), "output width in columns")
	diffCmd.Flags().Bool("watch", false, "redraw when the file changes on disk")
	diffCmd.MarkFlagsMutuallyExclusive("json", "unified")

	var filesCmd = &cobra.Command{
		Use:   "files",
		Short: "List files changed between two refs",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("base")
			head, _ := cmd.Flags().GetString("head")
			globs, _ := cmd.Flags().GetStringSlice("glob")

			files, err := ws.Diffs.List(cmd.Context(), base, head, globs...)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes")
				return nil
			}

			green := color.New(color.FgGreen).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			for _, f := range files {
				var mark string
				switch f.Status {
				case git.StatusAdded:
					mark = green("A")
				case git.StatusDeleted:
					mark = red("D")
				default:
					mark = yellow("M")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, f.Path)
			}
			return nil
		},
	}
	filesCmd.Flags().String("base", "HEAD", "base ref")
	filesCmd.Flags().String("head", git.WorkingTree, "head ref, @ for the working tree")
	filesCmd.Flags().StringSlice("glob", nil, "only list paths matching these globs (** supported)")

	var refsCmd = &cobra.Command{
		Use:   "refs",
		Short: "List branches, remotes and tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := ws.Repo.ListRefs(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range refs {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Report whether the working tree differs from HEAD",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirty, err := ws.Repo.HasUncommittedChanges(cmd.Context())
			if err != nil {
				return err
			}
			if dirty {
				color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "Uncommitted changes")
			} else {
				color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Working tree clean")
			}
			return nil
		},
	}

	indexCmd := func(use, short, done string, op func(context.Context, string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <path>...",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, p := range args {
					if err := op(cmd.Context(), p); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", done, p)
				}
				return nil
			},
		}
	}
	stageCmd := indexCmd("stage", "Add the working tree state of files to the index", "Staged",
		func(ctx context.Context, p string) error { return ws.Repo.Stage(ctx, p) })
	unstageCmd := indexCmd("unstage", "Reset the index entries of files to HEAD", "Unstaged",
		func(ctx context.Context, p string) error { return ws.Repo.Unstage(ctx, p) })
	discardCmd := indexCmd("discard", "Revert files to HEAD in the index and the working tree", "Discarded",
		func(ctx context.Context, p string) error { return ws.Repo.Discard(ctx, p) })
	discardCmd.Long = `Revert files to HEAD in both the index and the working tree. Files that
do not exist in HEAD are deleted. This cannot be undone.`

	rootCmd.AddCommand(diffCmd, filesCmd, refsCmd, statusCmd, stageCmd, unstageCmd, discardCmd, newReviewCmd())
}

func watchFile(ctx context.Context, path string, redraw func()) error {
	w, err := watch.New(ws.Repo.Root(), watch.Options{Paths: []string{path}}, logger.Named("watch"))
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger.Debug("watching for changes", zap.String("path", path))
	if err := w.Run(ctx, func([]string) { redraw() }); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// terminalWidth reads $COLUMNS, falling back to the renderer default.
func terminalWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return 0
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
