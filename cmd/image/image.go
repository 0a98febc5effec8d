package image

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/library"
)

var ImageCmd = &cobra.Command{
	Use:     "image",
	Aliases: []string{"img"},
	Short:   "Library image operations",
	Long: `Library image operations.

Every subcommand takes image ids; a unique id prefix (like the 8 chars shown by "search") is enough.`,
}

// open opens the library and resolves the id prefixes of args.
func open(ctx context.Context, args []string) (*library.Store, []string, error) {
	store, err := cmd.OpenLibrary(ctx)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		id, err := store.ResolveImageID(ctx, arg)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		ids = append(ids, id)
	}
	return store, ids, nil
}

func init() {
	cmd.RootCmd.AddCommand(ImageCmd)
}
