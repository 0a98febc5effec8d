package folder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/search"
	"github.com/sagan/naimeta/util"
	"github.com/sagan/naimeta/util/helper"
)

var FolderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Library folder operations",
	Long: `Library folder operations. Folders are referenced by name or id.
Images in no folder are in the root, referenced as "` + search.RootFolder + `".`,
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List folders with their image counts",
	Args:  cobra.NoArgs,
	RunE: func(command *cobra.Command, args []string) error {
		ctx := command.Context()
		store, err := cmd.OpenLibrary(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		folders, err := store.ListFolders(ctx)
		if err != nil {
			return err
		}
		if flagJson {
			fmt.Fprintln(command.OutOrStdout(), util.ToJson(folders))
			return nil
		}
		var rows [][]string
		for _, folder := range folders {
			n, err := store.CountImagesInFolder(ctx, folder.ID)
			if err != nil {
				return err
			}
			rows = append(rows, []string{cmd.ShortID(folder.ID), folder.Name, folder.Color, strconv.Itoa(n),
				time.UnixMilli(folder.CreatedAt).Format(time.DateTime)})
		}
		n, err := store.CountImagesInFolder(ctx, "")
		if err != nil {
			return err
		}
		rows = append(rows, []string{"", search.RootFolder, "", strconv.Itoa(n), ""})
		fmt.Fprintln(command.OutOrStdout(), cmd.RenderTable([]string{"ID", "Name", "Color", "Images", "Created"},
			rows, []cmd.ColumnAlignment{cmd.AlignLeft, cmd.AlignLeft, cmd.AlignLeft, cmd.AlignRight}, 40))
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		ctx := command.Context()
		store, err := cmd.OpenLibrary(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		folder, err := store.CreateFolder(ctx, args[0], flagColor)
		if err != nil {
			return err
		}
		fmt.Fprintf(command.OutOrStdout(), "Created folder %s (%s)\n", folder.Name, folder.ID)
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <folder> <new-name>",
	Short: "Rename a folder, or change its color with --color",
	Args:  cobra.ExactArgs(2),
	RunE: func(command *cobra.Command, args []string) error {
		ctx := command.Context()
		store, err := cmd.OpenLibrary(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		folder, err := cmd.ResolveFolder(ctx, store, args[0])
		if err != nil {
			return err
		}
		if err := store.RenameFolder(ctx, folder.ID, args[1]); err != nil {
			return err
		}
		if command.Flags().Changed("color") {
			if err := store.SetFolderColor(ctx, folder.ID, flagColor); err != nil {
				return err
			}
		}
		fmt.Fprintf(command.OutOrStdout(), "%s => %s\n", folder.Name, args[1])
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <folder>",
	Short: "Delete a folder. Its images are moved to the root, not deleted",
	Args:  cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		ctx := command.Context()
		store, err := cmd.OpenLibrary(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		folder, err := cmd.ResolveFolder(ctx, store, args[0])
		if err != nil {
			return err
		}
		n, err := store.CountImagesInFolder(ctx, folder.ID)
		if err != nil {
			return err
		}
		if !flagForce && !helper.AskYesNoConfirm(
			fmt.Sprintf("Delete folder %q (%d images will be moved to root)", folder.Name, n)) {
			return fmt.Errorf("abort")
		}
		if err := store.DeleteFolder(ctx, folder.ID); err != nil {
			return err
		}
		fmt.Fprintf(command.OutOrStdout(), "Deleted folder %s\n", folder.Name)
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count <folder>",
	Short: "Print the number of images in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(command *cobra.Command, args []string) error {
		ctx := command.Context()
		store, err := cmd.OpenLibrary(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		folderID := ""
		if args[0] != search.RootFolder {
			folder, err := cmd.ResolveFolder(ctx, store, args[0])
			if err != nil {
				return err
			}
			folderID = folder.ID
		}
		n, err := store.CountImagesInFolder(ctx, folderID)
		if err != nil {
			return err
		}
		fmt.Fprintln(command.OutOrStdout(), n)
		return nil
	},
}

var (
	flagJson  bool
	flagColor string
	flagForce bool
)

func init() {
	lsCmd.Flags().BoolVarP(&flagJson, "json", "", false, "Output as JSON")
	createCmd.Flags().StringVarP(&flagColor, "color", "", "", `Folder color, e.g. "#ff8800"`)
	renameCmd.Flags().StringVarP(&flagColor, "color", "", "", `Also set folder color, e.g. "#ff8800"`)
	rmCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Do not ask for confirmation")
	FolderCmd.AddCommand(lsCmd, createCmd, renameCmd, rmCmd, countCmd)
	cmd.RootCmd.AddCommand(FolderCmd)
}
