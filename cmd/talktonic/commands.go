package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"talktonic/internal/apperr"
	"talktonic/internal/app"
	"talktonic/internal/chat"
	"talktonic/internal/dialogue"
	"talktonic/internal/format"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newRouteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "route [text...]",
		Short: "Route one message and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			gw, err := app.NewGateways(cfg)
			if err != nil {
				return err
			}
			defer gw.Close()

			out := gw.Router(cfg.Triggers).Route(context.Background(), chat.NewSession(), input)
			reply := out.Reply.Content
			if !opts.raw && out.Path != dialogue.PathCSV {
				reply = renderMarkdown(reply)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			if out.Err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errStyle.Render(fmt.Sprintf("%s error on %s path", apperr.KindOf(out.Err), out.Path)))
				return errors.New("turn failed")
			}
			return nil
		},
	}
}

func newFormatCmd(opts *options) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "format [data...]",
		Short: "Convert data with json_to_csv, upper or lower",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			out, err := format.Format(data, format.Mode(mode))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errStyle.Render(apperr.Marker(err)))
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			if format.Mode(mode) != format.ModeJSONToCSV {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(format.ModeJSONToCSV), "json_to_csv, upper or lower")
	return cmd
}

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...]",
		Short: "Show how input would be classified",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			row := func(label string, v any) {
				if opts.raw {
					fmt.Fprintf(w, "%s: %v\n", label, v)
					return
				}
				fmt.Fprintf(w, "%s %v\n", labelStyle.Render(label+":"), v)
			}
			row("type", dialogue.Classify(text))
			row("is_url", dialogue.IsURL(text))
			row("is_csv", dialogue.IsCSV(text))
			if u, ok := dialogue.ExtractURL(text); ok {
				row("url", u)
			}
			return nil
		},
	}
}
