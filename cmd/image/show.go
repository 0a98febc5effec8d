package image

import (
	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/library"
)

var showCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show library images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  doShow,
}

var (
	flagWithThumbnail bool
	showPrintOptions  cmd.PrintOptions
)

func doShow(command *cobra.Command, args []string) error {
	ctx := command.Context()
	store, ids, err := open(ctx, args)
	if err != nil {
		return err
	}
	defer store.Close()
	var images []*library.Image
	for _, id := range ids {
		img, err := store.GetImage(ctx, id)
		if err != nil {
			return err
		}
		if !flagWithThumbnail {
			img.Thumbnail = ""
		}
		images = append(images, img)
	}
	if len(images) == 1 {
		return showPrintOptions.Print(command, images[0])
	}
	return showPrintOptions.Print(command, images)
}

func init() {
	showCmd.Flags().BoolVarP(&flagWithThumbnail, "with-thumbnail", "", false, "Include the thumbnail data URL")
	showPrintOptions.AddFlags(showCmd)
	ImageCmd.AddCommand(showCmd)
}
