package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"imaginarium/internal/logging"
	"imaginarium/internal/session"
)

// runCmd executes sentences given on the command line
var runCmd = &cobra.Command{
	Use:   "run [sentence...]",
	Short: "Run one or more sentences",
	Long: `Runs the given sentences in order and prints the results.

Example:
  imagine run "a cat is a kind of animal." "imagine 3 cats."`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		return runText(cmd.Context(), s, strings.Join(args, " "), cmd.OutOrStdout())
	},
}

// loadCmd loads a definitions file and reports what it contains
var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load a definitions file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		n, err := s.LoadDefinitions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		renderLoaded(cmd.OutOrStdout(), args[0], n, s)
		return nil
	},
}

// replCmd starts the interactive prompt
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive prompt",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

var factSentences []string

// factsCmd queries the fact engine after a generation
var factsCmd = &cobra.Command{
	Use:   "facts [query]",
	Short: "Query the facts of an invention",
	Long: `Loads the definitions, runs the --imagine sentences and evaluates a
Datalog query against the resulting invention.

Example:
  imagine facts -d world.txt --imagine "imagine 4 people." "connected(X, Y)"
  imagine facts -d world.txt --imagine "imagine a cat." kind_count`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		for _, sentence := range factSentences {
			if _, err := s.UserCommand(ctx, sentence); err != nil {
				return err
			}
		}
		return queryFacts(ctx, s, args[0], cmd.OutOrStdout())
	},
}

// watchCmd reloads a definitions file whenever it changes
var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Reload a definitions file on change and imagine from it",
	Long: `Watches a definitions file. Every time it is saved the file is loaded
into a fresh session and its imagine sentences are printed again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		w, err := session.Watch(ctx, cfg, args[0], func(s *session.Session, n int, err error) {
			if err != nil {
				renderError(out, err)
				return
			}
			renderLoaded(out, args[0], n, s)
			if inv := s.Invention(); inv != nil {
				for _, d := range inv.Descriptions() {
					fmt.Fprintln(out, descriptionStyle.Render(d))
				}
			}
		})
		if err != nil {
			return err
		}
		defer w.Stop()

		<-ctx.Done()
		logging.Boot("watch of %s interrupted", args[0])
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.Name, cfg.Version)
	},
}

func init() {
	factsCmd.Flags().StringArrayVar(&factSentences, "imagine", nil, "Sentence to run before the query (repeatable)")
}

// openSession creates a session and loads the --definitions file.
func openSession(ctx context.Context) (*session.Session, error) {
	s, err := session.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if definitions != "" {
		if _, err := s.LoadDefinitions(ctx, definitions); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	p := tea.NewProgram(newReplModel(ctx, s),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// runText runs every sentence in text, printing the results that were
// produced before any error.
func runText(ctx context.Context, s *session.Session, text string, out io.Writer) error {
	results, err := s.UserCommand(ctx, text)
	for _, r := range results {
		renderResult(out, r)
	}
	return err
}

// queryFacts accepts either a bare predicate name or a full query atom.
func queryFacts(ctx context.Context, s *session.Session, query string, out io.Writer) error {
	if query == "" {
		return errors.New("empty query")
	}
	if !strings.Contains(query, "(") {
		facts, err := s.FactsOf(query)
		if err != nil {
			return err
		}
		renderFacts(out, facts)
		return nil
	}
	result, err := s.Facts(ctx, query)
	if err != nil {
		return err
	}
	renderBindings(out, result)
	return nil
}
