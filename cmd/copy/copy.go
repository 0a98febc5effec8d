package copy

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/util"
)

var copyCmd = &cobra.Command{
	Use:   "copy {file.png | file.webp | -}",
	Short: "Copy a metadata field of an image to clipboard. Windows only",
	Long: `Copy a metadata field of an image to clipboard. Windows only.

Fields: prompt, negative, seed, tags, characters, params, json.
"params" is a one line "Steps: 28, CFG scale: 7, Sampler: k_euler, Seed: 1" summary.
"json" is the whole normalized record.

Use --print to write the text to stdout instead, which works on all platforms.`,
	Args: cobra.ExactArgs(1),
	RunE: doCopy,
}

var (
	flagField     string
	flagPrint     bool
	flagNoStealth bool
)

// Fields lists the field names accepted by Field.
var Fields = []string{"prompt", "negative", "seed", "tags", "characters", "params", "json"}

// Field renders the named field of record as clipboard text.
func Field(record *imagemeta.Record, name string) (string, error) {
	switch name {
	case "prompt":
		return record.Prompt, nil
	case "negative":
		return record.NegativePrompt, nil
	case "seed":
		return strconv.FormatInt(record.Seed, 10), nil
	case "tags":
		return strings.Join(record.Tags, ", "), nil
	case "characters":
		return strings.Join(record.CharacterPrompts, "\n"), nil
	case "params":
		return fmt.Sprintf("Steps: %d, CFG scale: %s, Sampler: %s, Seed: %d",
			record.Steps, strconv.FormatFloat(record.CfgScale, 'f', -1, 64), record.Sampler, record.Seed), nil
	case "json":
		return util.ToJson(record), nil
	}
	return "", fmt.Errorf("invalid field %q, valid fields: %s", name, strings.Join(Fields, ", "))
}

func doCopy(command *cobra.Command, args []string) error {
	data, err := cmd.ReadInput(command, args[0])
	if err != nil {
		return err
	}
	name := ""
	if args[0] != "-" {
		name = filepath.Base(args[0])
	}
	record, err := cmd.NewExtractor(flagNoStealth).Extract(name, data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	text, err := Field(record, flagField)
	if err != nil {
		return err
	}
	if flagPrint {
		_, err = fmt.Fprintln(command.OutOrStdout(), text)
		return err
	}
	return writeClipboard(text)
}

func init() {
	copyCmd.Flags().StringVarP(&flagField, "field", "f", "prompt", "Field to copy: "+strings.Join(Fields, ", "))
	copyCmd.Flags().BoolVarP(&flagPrint, "print", "", false, "Print the text to stdout instead of clipboard")
	copyCmd.Flags().BoolVarP(&flagNoStealth, "no-stealth", "", false,
		"Do not decode alpha channel stealth metadata")
	cmd.RootCmd.AddCommand(copyCmd)
}
