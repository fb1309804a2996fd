package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/ingest"
)

type ingestOutput struct {
	*ingest.IngestionResult
	Message string `json:"message"`
}

func (c *cli) newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE",
		Short: "Import leads from an Excel workbook",
		Long: `Ingest reads the first sheet of an .xlsx workbook and upserts one lead per row
that has a name. Rows are matched to stored leads by email; rows without an email get
a generated address. One upload history record is written per successful run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			c.ui.Step("Ingesting %s", args[0])
			bar := c.ui.ProgressBar("rows")
			result, err := svc.Pipeline.IngestFile(ctx, args[0], func(done, total int) {
				if bar != nil {
					bar.SetTotal(int64(total), false)
					bar.SetCurrent(int64(done))
				}
			})
			if bar != nil {
				if err != nil {
					bar.Abort(false)
				} else {
					bar.SetTotal(-1, true)
				}
			}
			c.ui.Close()
			if err != nil {
				c.ui.Error("Ingestion failed: %v", err)
				return err
			}

			if c.outputJSON {
				return c.ui.JSON(ingestOutput{IngestionResult: result, Message: result.Message()})
			}
			c.ui.Success("%s", result.Message())
			c.ui.KeyValue("Upload ID", result.UploadID)
			c.ui.KeyValue("Rows", result.TotalRows)
			c.ui.KeyValue("Duration", FormatDuration(result.Duration))
			return nil
		},
	}
}

func (c *cli) newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every stored lead to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := c.services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}

			counter, finish := c.ui.ByteCounter("Writing workbook")
			n, err := svc.Exporter.Export(ctx, io.MultiWriter(f, counter))
			finish()
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(output)
				c.ui.Error("Export failed: %v", err)
				return err
			}

			info, err := os.Stat(output)
			if err != nil {
				return err
			}
			if c.outputJSON {
				return c.ui.JSON(map[string]interface{}{"file": output, "leads": n, "bytes": info.Size()})
			}
			c.ui.Success("Exported %d leads to %s (%s)", n, output, FormatBytes(info.Size()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", export.Filename, "output file")
	return cmd
}
