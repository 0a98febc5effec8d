package diff

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/util"
	"github.com/sagan/naimeta/util/datautil"
)

var diffCmd = &cobra.Command{
	Use:   "diff {a.png | -} {b.png | -}",
	Short: "Compare the generation parameters of two images",
	Long: `Compare the normalized generation parameters of two images, e.g. to see how two
variations of a prompt differ. File name, format, size and where the metadata was found
are ignored unless --all is set.`,
	Args: cobra.ExactArgs(2),
	RunE: doDiff,
}

var (
	flagAll       bool
	flagJson      bool
	flagNoStealth bool
)

func doDiff(command *cobra.Command, args []string) error {
	extractor := cmd.NewExtractor(flagNoStealth)
	var records [2]*imagemeta.Record
	for i, file := range args {
		data, err := cmd.ReadInput(command, file)
		if err != nil {
			return err
		}
		if records[i], err = extractor.Extract(filepath.Base(file), data); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if !flagAll {
			records[i].FileName = ""
			records[i].Format = ""
			records[i].Source = ""
			records[i].Width, records[i].Height = 0, 0
		}
	}
	changes, err := datautil.Diff(records[0], records[1])
	if err != nil {
		return err
	}
	if flagJson {
		fmt.Fprintln(command.OutOrStdout(), util.ToJson(changes))
		return nil
	}
	return datautil.Print(command.OutOrStdout(), changes)
}

func init() {
	diffCmd.Flags().BoolVarP(&flagAll, "all", "a", false, "Also compare file name, format, size and source")
	diffCmd.Flags().BoolVarP(&flagJson, "json", "", false, "Output changes as JSON")
	diffCmd.Flags().BoolVarP(&flagNoStealth, "no-stealth", "", false,
		"Do not decode alpha channel stealth metadata")
	cmd.RootCmd.AddCommand(diffCmd)
}
