package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"talktonic/internal/config"
)

type options struct {
	configPath string
	raw        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "talktonic",
		Short: "Route chat input the way the TalkTonic widget does",
		Long: `talktonic runs single turns through the chat router from the terminal.

Examples:
  talktonic route "what is on https://go.dev today"
  printf 'name,age\nAnn,30\n' | talktonic route
  talktonic format --mode json_to_csv '[{"a":1},{"a":2}]'
  talktonic classify "https://example.com"`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (JSON or TOML); defaults and environment only when empty")
	root.PersistentFlags().BoolVar(&opts.raw, "raw", false, "print replies without markdown rendering")

	root.AddCommand(newRouteCmd(opts), newFormatCmd(opts), newClassifyCmd(opts))
	return root
}

func (o *options) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

// readInput joins args, or reads stdin when there are none or the only arg is "-".
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		if f, ok := stdin.(*os.File); ok {
			if st, err := f.Stat(); err == nil && st.Mode()&os.ModeCharDevice != 0 {
				return "", fmt.Errorf("no input: pass text as arguments or pipe it on stdin")
			}
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}
