package image

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
)

var favCmd = &cobra.Command{
	Use:   "fav <id>...",
	Short: "Toggle the favorite flag of images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  doFav,
}

func doFav(command *cobra.Command, args []string) error {
	ctx := command.Context()
	store, ids, err := open(ctx, args)
	if err != nil {
		return err
	}
	defer store.Close()
	for _, id := range ids {
		fav, err := store.ToggleFavorite(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(command.OutOrStdout(), "%s favorite: %t\n", cmd.ShortID(id), fav)
	}
	return nil
}

func init() {
	ImageCmd.AddCommand(favCmd)
}
