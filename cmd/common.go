package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/constants"
	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/features/library"
	"github.com/sagan/naimeta/util"
	"github.com/sagan/naimeta/util/helper"
	"github.com/sagan/naimeta/util/stringutil"
)

// ReadInput reads the whole file, or stdin if name is "-".
func ReadInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

// OpenLibrary opens the library database of the effective config.
func OpenLibrary(ctx context.Context) (*library.Store, error) {
	store, err := library.Open(ctx, Config.Library)
	if err != nil {
		return nil, fmt.Errorf("open library %q: %w", Config.Library, err)
	}
	return store, nil
}

// NewExtractor returns an extractor with config options. noStealth disables the alpha channel decoder.
func NewExtractor(noStealth bool) *imagemeta.Extractor {
	opts := Config.ExtractorOptions()
	if noStealth {
		opts.DisableStealth = true
	}
	return imagemeta.NewExtractor(opts)
}

// PrintOptions are the common output flags of single value commands.
type PrintOptions struct {
	Format   string
	Template string
	Output   string
	Force    bool
}

func (o *PrintOptions) AddFlags(command *cobra.Command) {
	command.Flags().StringVarP(&o.Format, "format", "", "json", constants.HELP_FORMAT_FLAG)
	command.Flags().StringVarP(&o.Template, "template", "", "",
		"Render output with Go text template instead. "+constants.HELP_TEMPLATE_FLAG)
	command.Flags().StringVarP(&o.Output, "output", "o", "-", constants.HELP_OUTPUT_FLAG)
	command.Flags().BoolVarP(&o.Force, "force", "", false, constants.HELP_FORCE_FLAG)
}

// Print renders value (via template or marshaler) and writes it to the configured output.
func (o *PrintOptions) Print(cmd *cobra.Command, value any) error {
	if err := helper.CheckOutput(o.Output, o.Force); err != nil {
		return err
	}
	var data []byte
	if o.Template != "" {
		tpl, err := helper.GetTemplate(o.Template, false)
		if err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
		// Templates see the JSON form so field names match the json output.
		var generic any
		if generic, err = util.Unmarshal("json", strings.NewReader(util.ToJson(value))); err != nil {
			return err
		}
		str, err := tpl.Exec(generic)
		if err != nil {
			return err
		}
		data = []byte(str + "\n")
	} else {
		var err error
		if data, err = util.Marshal(o.Format, value); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
	}
	return helper.WriteOutput(cmd.OutOrStdout(), o.Output, data)
}

type ColumnAlignment int

const (
	AlignLeft ColumnAlignment = iota
	AlignRight
)

// RenderTable renders a rounded box table. Cells wider than maxWidth (> 0) are truncated.
func RenderTable(headers []string, rows [][]string, aligns []ColumnAlignment, maxWidth int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if maxWidth > 0 {
				cell = stringutil.Ellipsis(cell, maxWidth)
			}
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ShortID returns the first 8 chars of a uuid, enough to be typed back.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
