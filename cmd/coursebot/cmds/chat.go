package cmds

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-go-golems/coursebot/pkg/inference/session"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
)

func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask follow-up questions in an interactive session",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindLoopFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			maxHistory, _ := cmd.Flags().GetInt("max-history")
			style, _ := cmd.Flags().GetString("style")
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				style = ""
			}

			a, err := newApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			s := session.NewSession(maxHistory)
			ui := &input.UI{
				Writer: cmd.ErrOrStderr(),
				Reader: cmd.InOrStdin(),
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, "Ask about the courses. Type 'exit' to quit.")

			for {
				query, err := ui.Ask("\n>", &input.Options{
					Required:  true,
					Loop:      true,
					HideOrder: true,
				})
				if err != nil {
					if errors.Is(err, input.ErrInterrupted) {
						return nil
					}
					return err
				}
				query = strings.TrimSpace(query)
				if query == "exit" || query == "quit" {
					return nil
				}

				ans, err := s.Ask(cmd.Context(), a.Loop, query)
				if err != nil {
					return err
				}
				if err := writeAnswer(w, ans, formatMarkdown, style); err != nil {
					return err
				}
			}
		},
	}
	addLoopFlags(cmd)
	cmd.Flags().Int("max-history", session.DefaultMaxHistory, "Number of exchanges kept as context")
	cmd.Flags().String("style", "dark", "Glamour style for answers on a terminal")
	return cmd
}
