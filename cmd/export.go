package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	internalApp "github.com/haierkeys/idea-inbox-service/internal/app"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	var configFile string
	var outDir string

	var exportCommand = &cobra.Command{
		Use:   "export [-c config_file] [-o output_dir]",
		Short: "Export the inbox as a zip of markdown documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(configFile)
			if err != nil {
				bootstrapLogger.Error("export init err", zap.Error(err))
				return err
			}
			defer closeFn()

			path, count, err := runExport(cmd.Context(), a, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d notes to %s\n", count, path)
			return nil
		},
	}

	rootCmd.AddCommand(exportCommand)
	fs := exportCommand.Flags()
	fs.StringVarP(&configFile, "config", "c", "", "config file")
	fs.StringVarP(&outDir, "output", "o", ".", "output dir")
}

// runExport writes the inbox archive into dir and returns its path and note count.
func runExport(ctx context.Context, a *internalApp.App, dir string) (string, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := a.ExportService.Export(ctx)
	if err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(dir, 0754); err != nil {
		return "", 0, errors.Wrap(err, "create output dir")
	}
	path := filepath.Join(dir, res.Filename)
	if err := os.WriteFile(path, res.Data, 0644); err != nil {
		return "", 0, errors.Wrap(err, "write archive")
	}
	return path, res.Count, nil
}
