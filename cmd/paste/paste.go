package paste

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/util/helper"
)

var pasteCmd = &cobra.Command{
	Use:   "paste",
	Short: "Parse NovelAI metadata of the image in clipboard. Windows only",
	Long: `Parse NovelAI metadata of the image in clipboard. Windows only.

Clipboard image is read as PNG. Most applications re-encode copied images, which drops the text chunks;
the alpha channel "stealth" metadata survives only if the alpha channel is kept.
Use --save to also write the clipboard image to a file.`,
	Args: cobra.ExactArgs(0),
	RunE: doPaste,
}

var (
	flagSave      string
	flagNoStealth bool
	printOptions  cmd.PrintOptions
)

var errNotImage = errors.New("clipboard does not contain an image")

func doPaste(command *cobra.Command, args []string) error {
	data, err := readClipboardImage()
	if err != nil {
		return err
	}
	if flagSave == "-" {
		return fmt.Errorf("--save can not be stdout")
	}
	if flagSave != "" {
		if err = helper.CheckOutput(flagSave, printOptions.Force); err != nil {
			return err
		}
		if err = helper.WriteOutput(command.OutOrStdout(), flagSave, data); err != nil {
			return fmt.Errorf("save clipboard image: %w", err)
		}
	}
	record, err := cmd.NewExtractor(flagNoStealth).Extract("clipboard.png", data)
	if err != nil {
		return err
	}
	return printOptions.Print(command, record)
}

func init() {
	pasteCmd.Flags().StringVarP(&flagSave, "save", "", "", "Also save clipboard image to this png file")
	pasteCmd.Flags().BoolVarP(&flagNoStealth, "no-stealth", "", false,
		"Do not decode alpha channel stealth metadata")
	printOptions.AddFlags(pasteCmd)
	cmd.RootCmd.AddCommand(pasteCmd)
}
