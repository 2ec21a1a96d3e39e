// Command epubtl translates the text of EPUB books.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ZaguanLabs/epubtl"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line against the given streams.
func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   epubtl.Name,
		Short: "Translate EPUB books with a translation cache",
		Long: `epubtl extracts the text of an EPUB book, translates it in size-limited
batches through OpenAI or Google Cloud Translation, caches every translation
and writes a bilingual (inline) or translated (replace) copy of the book.

Commands:
  translate   Translate a book
  cache       Export or import a translation cache
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		newTranslateCmd(),
		newCacheCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := epubtl.ReadBuildInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", epubtl.Name, info)
			if info.BuildDate != "" {
				fmt.Fprintf(out, "  built:   %s\n", info.BuildDate)
			}
		},
	}
}

// newLogger returns a text logger on w. Quiet keeps warnings and errors only.
func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
