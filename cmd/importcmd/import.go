package importcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/naimeta/cmd"
	"github.com/sagan/naimeta/features/archive"
	"github.com/sagan/naimeta/features/batch"
	"github.com/sagan/naimeta/features/library"
	"github.com/sagan/naimeta/features/thumbnail"
	"github.com/sagan/naimeta/util"
)

var importCmd = &cobra.Command{
	Use:   "import {dir | file | archive}...",
	Short: "Extract metadata of images and add them to the library",
	Long: `Extract metadata of images and add them to the library.

Directories are scanned recursively (unless --no-recursive) for .png and .webp files;
hidden files and dirs, and partial downloads, are skipped.
Each file is processed independently: files that fail to read or are not PNG / WebP
are reported at the end and do not stop the others.
It fails only if none of the files could be imported.

Archive args (.zip, .7z, .rar, .tar, .tgz) are extracted first, to a sibling dir named after the archive
("batch.zip" => "batch/"), or under --extract-dir. The dir must not exist.
The extracted images are then imported from there.
Legacy encoded (e.g. Shift_JIS) file names in zip files are detected and converted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: doImport,
}

var (
	flagFolder           string
	flagCreateFolder     bool
	flagInclude          []string
	flagNoRecursive      bool
	flagSniff            bool
	flagThumbnails       bool
	flagSquareThumbnails bool
	flagWorkers          int
	flagNoStealth        bool
	flagDryRun           bool
	flagExtractDir       string
)

// openStore opens the library. With --dry-run it is only opened if it already exists,
// a nil store is returned otherwise.
func openStore(ctx context.Context) (*library.Store, error) {
	if flagDryRun {
		if exists, err := util.FileExists(cmd.Config.Library); err != nil || !exists {
			return nil, err
		}
	}
	return cmd.OpenLibrary(ctx)
}

// extract extracts an archive arg and returns the dir to collect images from.
func extract(arg string) (string, error) {
	dir := archive.DefaultOutputDir(arg)
	if flagExtractDir != "" {
		dir = filepath.Join(flagExtractDir, filepath.Base(dir))
	}
	if exists, err := util.FileExists(dir); err != nil || exists {
		return "", fmt.Errorf("extract dir %q already exists or access error, err=%w", dir, err)
	}
	log.Infof("Extracting %s to %s", arg, dir)
	if err := archive.Extract(arg, dir); err != nil {
		return "", fmt.Errorf("extract %s: %w", arg, err)
	}
	return dir, nil
}

func doImport(command *cobra.Command, args []string) error {
	ctx := command.Context()
	var roots []string
	// args that could not be collected at all
	var skipped []*batch.Item
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() && archive.IsArchive(arg) {
			if flagDryRun {
				skipped = append(skipped, &batch.Item{Path: arg,
					Err: fmt.Errorf("archives can not be imported with --dry-run")})
				continue
			}
			dir, err := extract(arg)
			if err != nil {
				skipped = append(skipped, &batch.Item{Path: arg, Err: err})
				continue
			}
			arg = dir
		}
		roots = append(roots, arg)
	}
	paths, failedRoots, err := batch.CollectAll(roots, batch.CollectOptions{
		NoRecursive: flagNoRecursive,
		Include:     flagInclude,
		Sniff:       flagSniff,
	})
	if err != nil {
		return err
	}
	skipped = append(skipped, failedRoots...)
	for _, item := range skipped {
		fmt.Fprintf(command.ErrOrStderr(), "%s: %v\n", item.Path, item.Err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no image files found")
	}
	log.Infof("Found %d image files", len(paths))

	var store *library.Store
	if !flagDryRun || flagFolder != "" {
		store, err = openStore(ctx)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}
	}

	folderID := ""
	if flagFolder != "" && store != nil {
		folder, err := cmd.ResolveFolder(ctx, store, flagFolder)
		if errors.Is(err, library.ErrNotFound) && flagCreateFolder && !flagDryRun {
			folder, err = store.CreateFolder(ctx, flagFolder, "")
		}
		if err != nil {
			return err
		}
		folderID = folder.ID
	} else if flagFolder != "" {
		log.Warnf("Library %q does not exist, folder %q not checked", cmd.Config.Library, flagFolder)
	}

	workers := flagWorkers
	if workers <= 0 {
		workers = cmd.Config.Workers
	}
	opts := batch.Options{
		Workers:   workers,
		Extractor: cmd.NewExtractor(flagNoStealth),
	}
	thumbnails := map[string]string{}
	if flagThumbnails || flagSquareThumbnails {
		thumbOpts := &thumbnail.Options{
			MaxSize: cmd.Config.ThumbnailSize,
			Quality: cmd.Config.ThumbnailQuality,
			Square:  flagSquareThumbnails,
		}
		var mu sync.Mutex
		opts.Hook = func(item *batch.Item, data []byte) error {
			url, err := thumbnail.GenerateWithOptions(data, thumbOpts)
			if err != nil {
				log.Warnf("%s: thumbnail: %v", item.Path, err)
				return nil
			}
			mu.Lock()
			thumbnails[item.Path] = url
			mu.Unlock()
			return nil
		}
	}
	if cmd.IsTerminal(os.Stderr) {
		bar := progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts.OnDone = func(item *batch.Item) {
			bar.Add(1)
		}
		defer bar.Finish()
	}

	report := batch.Run(ctx, paths, opts)
	var images []*library.Image
	for _, item := range report.Succeeded() {
		path, err := filepath.Abs(item.Path)
		if err != nil {
			path = item.Path
		}
		img := library.NewImage(item.Record, path)
		img.Thumbnail = thumbnails[item.Path]
		img.FolderID = folderID
		images = append(images, img)
	}
	failed := report.Failed()
	for _, item := range failed {
		fmt.Fprintf(command.ErrOrStderr(), "%s: %v\n", item.Path, item.Err)
	}
	if !flagDryRun && len(images) > 0 {
		if err := store.PutImages(ctx, images); err != nil {
			return err
		}
	}
	if flagDryRun {
		fmt.Fprintf(command.OutOrStdout(), "Dry run: %d images would be imported, %d failed\n",
			len(images), len(failed)+len(skipped))
	} else {
		fmt.Fprintf(command.OutOrStdout(), "Imported %d images, %d failed\n", len(images), len(failed)+len(skipped))
	}
	if len(images) == 0 {
		return fmt.Errorf("none of the %d files could be imported", len(paths))
	}
	return nil
}

func init() {
	importCmd.Flags().StringVarP(&flagFolder, "folder", "", "", "Put imported images into this folder (name or id)")
	importCmd.Flags().BoolVarP(&flagCreateFolder, "create-folder", "", false, "Create --folder if it does not exist")
	importCmd.Flags().StringArrayVarP(&flagInclude, "include", "", nil,
		`Only import files matching this glob pattern (relative path or base name), e.g. "2024-*/**.png". `+
			`Can be set multiple times`)
	importCmd.Flags().BoolVarP(&flagNoRecursive, "no-recursive", "", false, "Do not scan sub dirs")
	importCmd.Flags().BoolVarP(&flagSniff, "sniff", "", false,
		"Also import files without .png / .webp extension whose contents are PNG or WebP")
	importCmd.Flags().BoolVarP(&flagThumbnails, "thumbnails", "", false, "Generate JPEG thumbnails")
	importCmd.Flags().BoolVarP(&flagSquareThumbnails, "square-thumbnails", "", false,
		"Generate square thumbnails of the most interesting region (implies --thumbnails)")
	importCmd.Flags().IntVarP(&flagWorkers, "workers", "", 0, "Number of concurrent workers. Default from config")
	importCmd.Flags().BoolVarP(&flagNoStealth, "no-stealth", "", false,
		"Do not decode alpha channel stealth metadata")
	importCmd.Flags().StringVarP(&flagExtractDir, "extract-dir", "", "",
		"Extract each archive arg into a sub dir (named after the archive) of this dir, "+
			"instead of next to the archive")
	importCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "", false, "Extract only, do not write the library")
	cmd.RootCmd.AddCommand(importCmd)
}
