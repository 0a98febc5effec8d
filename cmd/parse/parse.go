package parse

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/util/helper"
)

var parseCmd = &cobra.Command{
	Use:   "parse {file.png | file.webp | -}...",
	Short: "Parse NovelAI generation metadata of images",
	Long: `Parse NovelAI generation metadata of images and print the normalized record:
prompt, negative prompt, seed, steps, CFG scale, sampler, character prompts / UCs and derived tags.

Metadata is read from PNG text chunks, WebP EXIF, or (PNG only) the alpha channel "stealth" encoding.
Missing parameters get the defaults (steps 28, scale 7, sampler k_euler).

Args can be glob patterns like "*.png". If an arg is "-", read from stdin.
If multiple files are given, output is an array; one file that fails to parse makes the whole command fail.`,
	Args: cobra.MinimumNArgs(1),
	RunE: doParse,
}

var (
	flagNoStealth bool
	printOptions  cmd.PrintOptions
)

func doParse(command *cobra.Command, args []string) error {
	extractor := cmd.NewExtractor(flagNoStealth)
	files := helper.ParseFilenameArgs(args...)
	var records []*imagemeta.Record
	for _, file := range files {
		data, err := cmd.ReadInput(command, file)
		if err != nil {
			return err
		}
		name := ""
		if file != "-" {
			name = filepath.Base(file)
		}
		record, err := extractor.Extract(name, data)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		records = append(records, record)
	}
	if len(records) == 1 {
		return printOptions.Print(command, records[0])
	}
	return printOptions.Print(command, records)
}

func init() {
	parseCmd.Flags().BoolVarP(&flagNoStealth, "no-stealth", "", false,
		"Do not decode alpha channel stealth metadata")
	printOptions.AddFlags(parseCmd)
	cmd.RootCmd.AddCommand(parseCmd)
}
