package cmds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-go-golems/coursebot/pkg/events"
	"github.com/go-go-golems/coursebot/pkg/inference/toolloop"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const stepsTopic = "steps"

func NewAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a single question about the indexed courses",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindLoopFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			once, _ := cmd.Flags().GetBool("once")
			printSteps, _ := cmd.Flags().GetBool("print-steps")
			formatFlag, _ := cmd.Flags().GetString("output")
			style, _ := cmd.Flags().GetString("style")

			format, err := parseOutputFormat(formatFlag)
			if err != nil {
				return err
			}
			if format == formatMarkdown && !isatty.IsTerminal(os.Stdout.Fd()) {
				style = ""
			}

			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			answer := func(ctx context.Context) *toolloop.Answer {
				if once {
					return a.Loop.AnswerOnce(ctx, query, "")
				}
				return a.Loop.AnswerQuery(ctx, query, "")
			}

			var ans *toolloop.Answer
			if printSteps {
				ans, err = runWithStepPrinter(cmd.Context(), answer)
				if err != nil {
					return err
				}
			} else {
				ans = answer(cmd.Context())
			}
			if printSteps {
				u := a.Usage.Summary()
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "--- usage: %d calls (%d failed), %d input tokens, %d output tokens\n",
					u.Calls, u.FailedCalls, u.InputTokens, u.OutputTokens)
			}

			return writeAnswer(cmd.OutOrStdout(), ans, format, style)
		},
	}
	addLoopFlags(cmd)
	cmd.Flags().Bool("once", false, "Allow a single tool round")
	cmd.Flags().Bool("print-steps", false, "Print rounds, tool calls and sources to stderr")
	cmd.Flags().StringP("output", "o", "markdown", "Output format (text, markdown, html)")
	cmd.Flags().String("style", "dark", "Glamour style for markdown output on a terminal")
	return cmd
}

// runWithStepPrinter runs f with an event router printing loop progress to
// stderr.
func runWithStepPrinter(ctx context.Context, f func(context.Context) *toolloop.Answer) (*toolloop.Answer, error) {
	router, err := events.NewEventRouter(events.WithVerbose(viper.GetBool("verbose")))
	if err != nil {
		return nil, err
	}
	router.AddHandler("step-printer", stepsTopic, events.StepPrinterFunc(os.Stderr))

	var ans *toolloop.Answer
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return router.Run(ctx)
	})
	eg.Go(func() error {
		defer func() {
			_ = router.Close()
		}()
		<-router.Running()
		ans = f(events.WithEventSinks(ctx, router.NewSink(stepsTopic)))
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ans, nil
}
