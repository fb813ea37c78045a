package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	internalApp "github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/service"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	var configFile string

	var captureCommand = &cobra.Command{
		Use:   "capture [-c config_file] [text...]",
		Short: "Capture one note, reading stdin when no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				content = string(data)
			}

			a, closeFn, err := openApp(configFile)
			if err != nil {
				bootstrapLogger.Error("capture init err", zap.Error(err))
				return err
			}
			defer closeFn()

			return runCapture(cmd.Context(), a, content, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(captureCommand)
	captureCommand.Flags().StringVarP(&configFile, "config", "c", "", "config file")
}

// runCapture captures content and writes the stored note as indented JSON.
func runCapture(ctx context.Context, a *internalApp.App, content string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	note, err := a.CaptureService.Capture(ctx, content)
	if err != nil {
		return err
	}

	data, err := sonic.ConfigStd.MarshalIndent(service.NewNoteDTO(note), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
