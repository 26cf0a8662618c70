package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"staged/internal/git"
	"staged/internal/review"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newReviewCmd() *cobra.Command {
	var base, head string

	id := func() review.DiffID {
		return review.DiffID{Base: base, Head: head}
	}

	var reviewCmd = &cobra.Command{
		Use:   "review",
		Short: "Manage review state for a diff",
		Long:  `Record comments, reviewed files and edits against the diff between --base and --head.`,
	}
	reviewCmd.PersistentFlags().StringVar(&base, "base", "HEAD", "base ref")
	reviewCmd.PersistentFlags().StringVar(&head, "head", git.WorkingTree, "head ref, @ for the working tree")

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show comments, reviewed files and edits",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ws.Reviews()
			if err != nil {
				return err
			}
			rv, err := store.GetOrCreate(id())
			if err != nil {
				return err
			}
			printReview(cmd.OutOrStdout(), rv)
			return nil
		},
	}

	var commentCmd = &cobra.Command{
		Use:   "comment <path> <range-index> <text...>",
		Short: "Comment on an alignment range of a file",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rangeIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("range index must be a number: %w", err)
			}
			store, err := ws.Reviews()
			if err != nil {
				return err
			}
			c, err := store.AddComment(id(), review.NewComment{
				FilePath:   args[0],
				RangeIndex: rangeIndex,
				Text:       strings.Join(args[2:], " "),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Added comment", c.ID[:8])
			return nil
		},
	}

	var uncommentCmd = &cobra.Command{
		Use:   "uncomment <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ws.Reviews()
			if err != nil {
				return err
			}
			rv, err := store.GetOrCreate(id())
			if err != nil {
				return err
			}
			commentID, err := resolveCommentID(rv, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteComment(id(), commentID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted comment", commentID[:8])
			return nil
		},
	}

	var markCmd = &cobra.Command{
		Use:   "mark <path>...",
		Short: "Mark files as reviewed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ws.Reviews()
			if err != nil {
				return err
			}
			for _, p := range args {
				if _, err := store.MarkReviewed(id(), p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	var unmarkCmd = &cobra.Command{
		Use:   "unmark <path>...",
		Short: "Clear the reviewed mark of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ws.Reviews()
			if err != nil {
				return err
			}
			for _, p := range args {
				if _, err := store.UnmarkReviewed(id(), p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	var editCmd = &cobra.Command{
		Use:   "edit <path>",
		Short: "Record the current diff of a file as a review edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fd, err := ws.Diffs.Get(cmd.Context(), base, head, args[0])
			if err != nil {
				return err
			}
			if fd.Binary || len(fd.Hunks) == 0 {
				return fmt.Errorf("no textual changes in %s", args[0])
			}
			store, err := ws.Reviews()
			if err != nil {
				return err
			}
			e, err := store.AddEdit(id(), review.NewEdit{FilePath: args[0], Diff: fd.Format()})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Recorded edit", e.ID[:8])
			return nil
		},
	}

	var clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete the review",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ws.Reviews()
			if err != nil {
				return err
			}
			return store.Delete(id())
		},
	}

	reviewCmd.AddCommand(showCmd, commentCmd, uncommentCmd, markCmd, unmarkCmd, editCmd, clearCmd)
	return reviewCmd
}

// resolveCommentID expands a unique comment ID prefix.
func resolveCommentID(rv *review.Review, prefix string) (string, error) {
	var match string
	for _, c := range rv.Comments {
		if strings.HasPrefix(c.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("comment id %q is ambiguous", prefix)
			}
			match = c.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no comment with id %q", prefix)
	}
	return match, nil
}

func printReview(w io.Writer, rv *review.Review) {
	header := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	header.Fprintf(w, "Review %s..%s\n", rv.ID.Base, rv.ID.Head)

	if len(rv.Reviewed) > 0 {
		fmt.Fprintln(w, "\nReviewed files:")
		for _, p := range rv.Reviewed {
			fmt.Fprintf(w, "\t%s %s\n", green("✓"), p)
		}
	}

	if len(rv.Comments) > 0 {
		fmt.Fprintln(w, "\nComments:")
		for _, c := range rv.Comments {
			fmt.Fprintf(w, "\t%s  %s#%d  %s\n", dim(c.ID[:8]), c.FilePath, c.RangeIndex, c.Text)
		}
	}

	if len(rv.Edits) > 0 {
		fmt.Fprintln(w, "\nEdits:")
		for _, e := range rv.Edits {
			fmt.Fprintf(w, "\t%s  %s  %s\n", dim(e.ID[:8]), e.FilePath, e.CreatedAt.Format("2006-01-02 15:04"))
		}
	}

	if len(rv.Reviewed) == 0 && len(rv.Comments) == 0 && len(rv.Edits) == 0 {
		fmt.Fprintln(w, "No review activity")
	}
}
