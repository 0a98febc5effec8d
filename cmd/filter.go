package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sagan/naimeta/constants"
	"github.com/sagan/naimeta/features/library"
	"github.com/sagan/naimeta/features/search"
)

// FilterFlags are the gallery filter flags shared by search and export commands.
type FilterFlags struct {
	Tags      []string
	TagMode   string
	Sampler   string
	StepsMin  int
	StepsMax  int
	CfgMin    float64
	CfgMax    float64
	From      string
	To        string
	Favorites bool
	Folder    string
	Sort      string
	Seed      int64

	flags *pflag.FlagSet
}

func (f *FilterFlags) AddFlags(command *cobra.Command) {
	f.register(command.Flags())
}

// AddPersistentFlags registers the flags for command and all its subcommands.
func (f *FilterFlags) AddPersistentFlags(command *cobra.Command) {
	f.register(command.PersistentFlags())
}

func (f *FilterFlags) register(flags *pflag.FlagSet) {
	f.flags = flags
	flags.StringArrayVarP(&f.Tags, "tag", "", nil, "Filter by tag. Can be set multiple times")
	flags.StringVarP(&f.TagMode, "tag-mode", "", string(search.TagModeOr),
		`How multiple --tag combine: "or" (any) or "and" (all)`)
	flags.StringVarP(&f.Sampler, "sampler", "", "", `Filter by sampler, e.g. "k_euler"`)
	flags.IntVarP(&f.StepsMin, "steps-min", "", 0, "Minimum steps")
	flags.IntVarP(&f.StepsMax, "steps-max", "", 0, "Maximum steps")
	flags.Float64VarP(&f.CfgMin, "cfg-min", "", 0, "Minimum CFG scale")
	flags.Float64VarP(&f.CfgMax, "cfg-max", "", 0, "Maximum CFG scale")
	flags.StringVarP(&f.From, "from", "", "", "Added on or after this date. "+constants.HELP_DATE_FLAG)
	flags.StringVarP(&f.To, "to", "", "", "Added on or before this date (inclusive). "+constants.HELP_DATE_FLAG)
	flags.BoolVarP(&f.Favorites, "favorites", "", false, "Only favorite images")
	flags.StringVarP(&f.Folder, "folder", "", "",
		`Only images of this folder (name or id). Use "`+search.RootFolder+`" for images in no folder`)
	flags.Int64VarP(&f.Seed, "seed", "", 0, "Only images of this seed")
	flags.StringVarP(&f.Sort, "sort", "", string(search.SortDateDesc),
		fmt.Sprintf("Sort order, one of %v", search.SortOrders))
}

func (f *FilterFlags) changed(name string) bool {
	return f.flags != nil && f.flags.Changed(name)
}

// Filter converts the flags. query is the free text search.
func (f *FilterFlags) Filter(ctx context.Context, store *library.Store, query string) (
	filter search.Filter, sortBy search.SortBy, err error) {
	filter.Query = query
	filter.Tags = f.Tags
	switch search.TagMode(f.TagMode) {
	case search.TagModeOr, search.TagModeAnd:
		filter.TagMode = search.TagMode(f.TagMode)
	default:
		return filter, "", fmt.Errorf("invalid --tag-mode %q", f.TagMode)
	}
	filter.Sampler = f.Sampler
	if f.changed("steps-min") {
		filter.StepsMin = &f.StepsMin
	}
	if f.changed("steps-max") {
		filter.StepsMax = &f.StepsMax
	}
	if f.changed("cfg-min") {
		filter.CfgMin = &f.CfgMin
	}
	if f.changed("cfg-max") {
		filter.CfgMax = &f.CfgMax
	}
	if f.From != "" {
		if filter.DateFrom, err = time.ParseInLocation(constants.DATE_FORMAT, f.From, time.Local); err != nil {
			return filter, "", fmt.Errorf("invalid --from: %w", err)
		}
	}
	if f.To != "" {
		to, err := time.ParseInLocation(constants.DATE_FORMAT, f.To, time.Local)
		if err != nil {
			return filter, "", fmt.Errorf("invalid --to: %w", err)
		}
		filter.DateTo = to.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	filter.FavoritesOnly = f.Favorites
	if f.Folder != "" {
		if f.Folder == search.RootFolder {
			filter.FolderID = search.RootFolder
		} else {
			folder, err := ResolveFolder(ctx, store, f.Folder)
			if err != nil {
				return filter, "", err
			}
			filter.FolderID = folder.ID
		}
	}
	if sortBy, err = search.ParseSortBy(f.Sort); err != nil {
		return filter, "", err
	}
	return filter, sortBy, nil
}

// Images loads the library images and applies the flags.
func (f *FilterFlags) Images(ctx context.Context, store *library.Store, query string) ([]*library.Image, error) {
	filter, sortBy, err := f.Filter(ctx, store, query)
	if err != nil {
		return nil, err
	}
	var images []*library.Image
	switch {
	case f.changed("seed"):
		images, err = store.ListBySeed(ctx, f.Seed)
	case filter.FolderID != "":
		folderID := filter.FolderID
		if folderID == search.RootFolder {
			folderID = ""
		}
		images, err = store.ListByFolder(ctx, folderID)
	case !filter.DateFrom.IsZero() || !filter.DateTo.IsZero():
		images, err = store.ListByDateRange(ctx, filter.DateFrom, filter.DateTo)
	default:
		images, err = store.ListImages(ctx)
	}
	if err != nil {
		return nil, err
	}
	return search.Apply(images, nil, filter, sortBy)
}

// ResolveFolder finds a folder by id, then by name.
func ResolveFolder(ctx context.Context, store *library.Store, nameOrID string) (*library.Folder, error) {
	folder, err := store.GetFolder(ctx, nameOrID)
	if errors.Is(err, library.ErrNotFound) {
		folder, err = store.FindFolder(ctx, nameOrID)
	}
	if err != nil {
		return nil, fmt.Errorf("folder %q: %w", nameOrID, err)
	}
	return folder, nil
}
