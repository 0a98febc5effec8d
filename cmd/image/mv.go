package image

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/search"
)

var mvCmd = &cobra.Command{
	Use:   "mv <folder> <id>...",
	Short: "Move images into a folder",
	Long: `Move images into a folder (name or id).
Use "` + search.RootFolder + `" as folder to move images out of any folder.`,
	Args: cobra.MinimumNArgs(2),
	RunE: doMv,
}

func doMv(command *cobra.Command, args []string) error {
	ctx := command.Context()
	store, ids, err := open(ctx, args[1:])
	if err != nil {
		return err
	}
	defer store.Close()
	folderID, folderName := "", search.RootFolder
	if args[0] != search.RootFolder {
		folder, err := cmd.ResolveFolder(ctx, store, args[0])
		if err != nil {
			return err
		}
		folderID, folderName = folder.ID, folder.Name
	}
	for _, id := range ids {
		if err := store.MoveToFolder(ctx, id, folderID); err != nil {
			return err
		}
		fmt.Fprintf(command.OutOrStdout(), "%s => %s\n", cmd.ShortID(id), folderName)
	}
	return nil
}

func init() {
	ImageCmd.AddCommand(mvCmd)
}
