package image

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/util/helper"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Remove images from the library",
	Long:  `Remove images from the library. The image files on disk are not touched.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  doRm,
}

var (
	flagRmForce bool
)

func doRm(command *cobra.Command, args []string) error {
	ctx := command.Context()
	store, ids, err := open(ctx, args)
	if err != nil {
		return err
	}
	defer store.Close()
	if !flagRmForce && !helper.AskYesNoConfirm(fmt.Sprintf("Remove %d images from library", len(ids))) {
		return fmt.Errorf("abort")
	}
	for _, id := range ids {
		if err := store.DeleteImage(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(command.OutOrStdout(), "Removed %s\n", cmd.ShortID(id))
	}
	return nil
}

func init() {
	rmCmd.Flags().BoolVarP(&flagRmForce, "force", "", false, "Do not ask for confirmation")
	ImageCmd.AddCommand(rmCmd)
}
