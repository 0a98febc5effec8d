package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/constants"
	"github.com/sagan/naimeta/features/export"
	"github.com/sagan/naimeta/features/library"
	"github.com/sagan/naimeta/util/helper"
)

var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export library images as CSV, JSON, XLSX or ZIP",
	Long: `Export library images as CSV, JSON, XLSX or ZIP.

Each subcommand takes an optional search query and the filter flags of "search".
Default output file is "novelai-{gallery|metadata}-<unix ms>.<ext>" in current dir; use "-o -" for stdout.`,
}

var (
	flagOutput  string
	flagForce   bool
	flagLocale  string
	filterFlags cmd.FilterFlags
)

type writer func(w io.Writer, images []*library.Image, locale string) error

func newExportCmd(format, prefix, short string, write writer) *cobra.Command {
	return &cobra.Command{
		Use:   format + " [query]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			return doExport(command, args, format, prefix, write)
		},
	}
}

func doExport(command *cobra.Command, args []string, format, prefix string, write writer) error {
	ctx := command.Context()
	output := flagOutput
	if output == "" {
		output = fmt.Sprintf("novelai-%s-%d.%s", prefix, time.Now().UnixMilli(), format)
	}
	if err := helper.CheckOutput(output, flagForce); err != nil {
		return err
	}
	locale := flagLocale
	if locale == "" {
		locale = cmd.Config.Locale
	}
	locale, err := export.ParseLocale(locale)
	if err != nil {
		return err
	}
	store, err := cmd.OpenLibrary(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	images, err := filterFlags.Images(ctx, store, query)
	if err != nil {
		return err
	}
	if output == "-" {
		return write(command.OutOrStdout(), images, locale)
	}
	var buf bytes.Buffer
	if err := write(&buf, images, locale); err != nil {
		return err
	}
	if err := atomic.WriteFile(output, &buf); err != nil {
		return err
	}
	log.Infof("Exported %d images to %s", len(images), output)
	return nil
}

func init() {
	subcommands := []*cobra.Command{
		newExportCmd("csv", "metadata", "Export metadata as CSV (UTF-8 with BOM)", export.WriteCSV),
		newExportCmd("json", "metadata", "Export metadata as a JSON document",
			func(w io.Writer, images []*library.Image, _ string) error {
				return export.WriteJSON(w, images, time.Now())
			}),
		newExportCmd("xlsx", "metadata", "Export metadata as an Excel workbook", export.WriteXLSX),
		newExportCmd("zip", "gallery", "Export image files with per image metadata JSON as ZIP archive",
			func(w io.Writer, images []*library.Image, _ string) error {
				return export.WriteZIP(w, images)
			}),
	}
	ExportCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", constants.HELP_OUTPUT_FLAG)
	ExportCmd.PersistentFlags().BoolVarP(&flagForce, "force", "", false, constants.HELP_FORCE_FLAG)
	ExportCmd.PersistentFlags().StringVarP(&flagLocale, "locale", "", "",
		`Column header language of csv / xlsx: `+strings.Join(export.Locales, ", ")+`. Default from config`)
	for _, sub := range subcommands {
		ExportCmd.AddCommand(sub)
	}
	filterFlags.AddPersistentFlags(ExportCmd)
	cmd.RootCmd.AddCommand(ExportCmd)
}
