package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/util"
)

var searchCmd = &cobra.Command{
	Use:     "search [query]",
	Aliases: []string{"ls"},
	Short:   "Search and list library images",
	Long: `Search and list library images.

The query matches words by prefix in prompt, negative prompt, file name, tags and character prompts.
Text is split into tokens of letters and digits (case insensitive), and every query word must be
the prefix of some token of the same field. E.g. "1gi smi" finds the prompt "1girl, smile".

Other flags filter by tags, sampler, steps, CFG scale, date added, favorites and folder.`,
	Args: cobra.MaximumNArgs(1),
	RunE: doSearch,
}

var (
	flagJson    bool
	flagLimit   int
	filterFlags cmd.FilterFlags
)

func doSearch(command *cobra.Command, args []string) error {
	ctx := command.Context()
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
	if flagLimit > 0 && len(images) > flagLimit {
		images = images[:flagLimit]
	}
	if flagJson {
		fmt.Fprintln(command.OutOrStdout(), util.ToJson(images))
		return nil
	}
	rows := make([][]string, 0, len(images))
	for _, img := range images {
		fav := ""
		if img.IsFavorite {
			fav = "★"
		}
		rows = append(rows, []string{cmd.ShortID(img.ID), img.FileName, strconv.FormatInt(img.Seed, 10),
			strconv.Itoa(img.Steps), strconv.FormatFloat(img.CfgScale, 'f', -1, 64), img.Sampler, fav,
			img.Added().Format(time.DateTime), strings.Join(img.Tags, ", ")})
	}
	fmt.Fprintln(command.OutOrStdout(), cmd.RenderTable(
		[]string{"ID", "File", "Seed", "Steps", "CFG", "Sampler", "Fav", "Added", "Tags"}, rows,
		[]cmd.ColumnAlignment{cmd.AlignLeft, cmd.AlignLeft, cmd.AlignRight, cmd.AlignRight, cmd.AlignRight}, 40))
	fmt.Fprintf(command.OutOrStdout(), "%d images\n", len(images))
	return nil
}

func init() {
	searchCmd.Flags().BoolVarP(&flagJson, "json", "", false, "Output as JSON")
	searchCmd.Flags().IntVarP(&flagLimit, "limit", "", 0, "Max number of images to list. 0 = no limit")
	filterFlags.AddFlags(searchCmd)
	cmd.RootCmd.AddCommand(searchCmd)
}
