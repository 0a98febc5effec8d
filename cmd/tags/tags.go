package tags

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/search"
	"github.com/sagan/naimeta/util"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show the most used tags of library images",
	Long: `Show the most used tags of library images, most used first.
Tags used equally often are listed in the order they were first seen (newest image first).
The filter flags of "search" limit which images are counted.`,
	Args: cobra.NoArgs,
	RunE: doTags,
}

var (
	flagNumber  int
	flagJson    bool
	filterFlags cmd.FilterFlags
)

func doTags(command *cobra.Command, args []string) error {
	ctx := command.Context()
	store, err := cmd.OpenLibrary(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	images, err := filterFlags.Images(ctx, store, "")
	if err != nil {
		return err
	}
	counts := search.PopularTags(images, flagNumber)
	if flagJson {
		fmt.Fprintln(command.OutOrStdout(), util.ToJson(counts))
		return nil
	}
	rows := util.Map(counts, func(c search.TagCount) []string { return []string{c.Name, strconv.Itoa(c.Count)} })
	fmt.Fprintln(command.OutOrStdout(), cmd.RenderTable([]string{"Tag", "Count"}, rows,
		[]cmd.ColumnAlignment{cmd.AlignLeft, cmd.AlignRight}, 60))
	return nil
}

func init() {
	tagsCmd.Flags().IntVarP(&flagNumber, "number", "n", search.DefaultPopularTags, "Number of tags to show")
	tagsCmd.Flags().BoolVarP(&flagJson, "json", "", false, "Output as JSON")
	filterFlags.AddFlags(tagsCmd)
	cmd.RootCmd.AddCommand(tagsCmd)
}
