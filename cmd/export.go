package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brogergvhs/crunchymanga/internal/config"
	"github.com/brogergvhs/crunchymanga/internal/export"
	"github.com/brogergvhs/crunchymanga/internal/manga"
	"github.com/brogergvhs/crunchymanga/internal/ui"
	"github.com/brogergvhs/crunchymanga/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagExportFormat   string
	flagExportPageSize string
	flagExportDivide   int
	flagExportBatching string
	flagExportClean    bool
)

var exportCmd = &cobra.Command{
	Use:   "export <title folder>",
	Short: "Build PDF and/or EPUB files from pages downloaded earlier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
			PDFBatching:  flagExportBatching,
		})
		if err != nil {
			return err
		}

		logSvc := ui.NewLogger(cfg.Debug)
		defer logSvc.Sync()

		format, err := export.ParseFormat(flagExportFormat)
		if err != nil {
			return err
		}
		if format == export.FormatImages {
			return fmt.Errorf("format %q has nothing to export", flagExportFormat)
		}
		if export.WantsPDF(format) && !export.ValidPageSize(flagExportPageSize) {
			return fmt.Errorf("unknown PDF page size %q", flagExportPageSize)
		}
		divide, err := export.ParseDivide(strconv.Itoa(flagExportDivide))
		if err != nil {
			return err
		}

		dir := filepath.Clean(args[0])
		pub, err := manga.Scan(dir)
		if err != nil {
			return err
		}
		// manga.yaml keeps the divide of the original run unless overridden
		if cmd.Flags().Changed("divide") {
			pub.Divide = divide
		}
		logSvc.Infof("Found %d chapters, %d pages in %s", len(pub.Chapters), pub.PageCount(), dir)

		start := time.Now()
		stats := &ui.Stats{}
		x := export.New(logSvc, stats, export.Options{
			Dir:      filepath.Dir(dir),
			Name:     filepath.Base(dir),
			Format:   format,
			PageSize: flagExportPageSize,
			Batching: cfg.PDFBatching,
		})
		if _, err := x.Export(pub); err != nil {
			return err
		}

		if flagExportClean {
			if err := util.CleanupFolder(dir); err != nil {
				logSvc.Warnf("Cleanup of %s incomplete: %v", dir, err)
			}
		}

		stats.Print(time.Since(start))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", export.FormatBoth, "pdf, epub or both")
	exportCmd.Flags().StringVar(&flagExportPageSize, "page-size", "LETTER", "PDF page size (A3, A4, A5, LETTER, LEGAL, TABLOID)")
	exportCmd.Flags().IntVar(&flagExportDivide, "divide", 0, "chapters per exported file, 0 for a single file")
	exportCmd.Flags().StringVar(&flagExportBatching, "pdf-batching", "", "aligned or legacy PDF chapter grouping")
	exportCmd.Flags().BoolVar(&flagExportClean, "clean", false, "delete the page images afterwards")

	rootCmd.AddCommand(exportCmd)
}
