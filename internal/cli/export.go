package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apresai/personaswap/internal/history"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload a JSON snapshot of recent history to S3",
	Long:  "Read recent transformations from the configured history store and write them as one JSON object to HISTORY_S3_BUCKET.",
	RunE:  runExport,
}

var flagExportLimit int

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().IntVarP(&flagExportLimit, "limit", "n", 0, "Number of records to export (default: history capacity)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	exporter, err := history.OpenExporter(ctx, cfg)
	if errors.Is(err, history.ErrExportDisabled) {
		return errors.New("export needs an S3 bucket: set HISTORY_S3_BUCKET or export.s3_bucket")
	}
	if err != nil {
		return err
	}

	limit := flagExportLimit
	if limit <= 0 {
		limit = cfg.History.Capacity
	}
	key, err := exporter.Export(ctx, a.svc.Store(), limit)
	if err != nil {
		return err
	}
	a.log.Info("Exported history", "bucket", cfg.Export.S3Bucket, "key", key)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported history to s3://%s/%s\n", cfg.Export.S3Bucket, key)
	return nil
}
