package raw

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
)

var rawCmd = &cobra.Command{
	Use:   "raw {file.png | file.webp | -}",
	Short: "Print the raw (not normalized) metadata of an image",
	Long: `Print the raw metadata of an image: container format, where the metadata was found
(text / exif / stealth / none), the parsed "Comment" JSON object and other text fields.

If {file} is "-", read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: doRaw,
}

var (
	flagNoStealth bool
	printOptions  cmd.PrintOptions
)

func doRaw(command *cobra.Command, args []string) error {
	data, err := cmd.ReadInput(command, args[0])
	if err != nil {
		return err
	}
	raw, err := cmd.NewExtractor(flagNoStealth).ReadRaw(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if raw.Malformed != nil {
		log.Warnf("%s: %v", args[0], raw.Malformed)
	}
	return printOptions.Print(command, raw)
}

func init() {
	rawCmd.Flags().BoolVarP(&flagNoStealth, "no-stealth", "", false,
		"Do not decode alpha channel stealth metadata")
	printOptions.AddFlags(rawCmd)
	cmd.RootCmd.AddCommand(rawCmd)
}
