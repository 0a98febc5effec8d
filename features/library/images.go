package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const upsertImageSQL = `INSERT OR REPLACE INTO images (` + imageColumns + `) VALUES (` + imageValues + `)`

// PutImage inserts img, replacing any image with the same id.
func (s *Store) PutImage(ctx context.Context, img *Image) error {
	if img == nil || img.ID == "" {
		return errors.New("image without id")
	}
	if _, err := s.db.NamedExecContext(ctx, upsertImageSQL, toRow(img)); err != nil {
		return fmt.Errorf("put image %s: %w", img.ID, err)
	}
	return nil
}

// PutImages stores all images in one transaction.
func (s *Store) PutImages(ctx context.Context, images []*Image) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, upsertImageSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, img := range images {
		if img == nil || img.ID == "" {
			return errors.New("image without id")
		}
		if _, err := stmt.ExecContext(ctx, toRow(img)); err != nil {
			return fmt.Errorf("put image %s: %w", img.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit images: %w", err)
	}
	return nil
}

// GetImage fetches an image by id.
func (s *Store) GetImage(ctx context.Context, id string) (*Image, error) {
	var row imageRow
	err := s.db.GetContext(ctx, &row, `SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("image %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return row.image(), nil
}

// ResolveImageID returns the id of the only image whose id starts with prefix.
func (s *Store) ResolveImageID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("empty image id: %w", ErrNotFound)
	}
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `SELECT id FROM images WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolve image id: %w", err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("image %s: %w", prefix, ErrNotFound)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("image id prefix %q: %w", prefix, ErrAmbiguousID)
}

// UpdateImage overwrites an existing image.
func (s *Store) UpdateImage(ctx context.Context, img *Image) error {
	if img == nil {
		return errors.New("image is nil")
	}
	if _, err := s.GetImage(ctx, img.ID); err != nil {
		return err
	}
	return s.PutImage(ctx, img)
}

// DeleteImage removes an image.
func (s *Store) DeleteImage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return expectAffected(res, "image", id)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE images SET is_favorite = 1 - is_favorite WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	if err := expectAffected(res, "image", id); err != nil {
		return false, err
	}
	var fav bool
	if err := s.db.GetContext(ctx, &fav, `SELECT is_favorite FROM images WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("read favorite: %w", err)
	}
	return fav, nil
}

// MoveToFolder puts an image into folderID. Empty folderID moves it to the root.
func (s *Store) MoveToFolder(ctx context.Context, id, folderID string) error {
	if folderID != "" {
		if _, err := s.GetFolder(ctx, folderID); err != nil {
			return err
		}
	}
	res, err := s.db.ExecContext(ctx, `UPDATE images SET folder_id = ? WHERE id = ?`, nullableString(folderID), id)
	if err != nil {
		return fmt.Errorf("move image: %w", err)
	}
	return expectAffected(res, "image", id)
}

// ListImages returns all images, newest first.
func (s *Store) ListImages(ctx context.Context) ([]*Image, error) {
	return s.selectImages(ctx, `SELECT `+imageColumns+` FROM images ORDER BY date_added DESC, id`)
}

// ListByFolder returns the images of a folder, newest first. Empty folderID lists the root.
func (s *Store) ListByFolder(ctx context.Context, folderID string) ([]*Image, error) {
	if folderID == "" {
		return s.selectImages(ctx, `SELECT `+imageColumns+` FROM images WHERE folder_id IS NULL
            ORDER BY date_added DESC, id`)
	}
	return s.selectImages(ctx, `SELECT `+imageColumns+` FROM images WHERE folder_id = ?
        ORDER BY date_added DESC, id`, folderID)
}

// ListBySeed returns the images generated with seed.
func (s *Store) ListBySeed(ctx context.Context, seed int64) ([]*Image, error) {
	return s.selectImages(ctx, `SELECT `+imageColumns+` FROM images WHERE seed = ?
        ORDER BY date_added DESC, id`, seed)
}

// ListByDateRange returns the images added in [from, to]. A zero bound is open.
func (s *Store) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE 1 = 1`
	var args []any
	if !from.IsZero() {
		query += ` AND date_added >= ?`
		args = append(args, from.UnixMilli())
	}
	if !to.IsZero() {
		query += ` AND date_added <= ?`
		args = append(args, to.UnixMilli())
	}
	return s.selectImages(ctx, query+` ORDER BY date_added DESC, id`, args...)
}

// CountImages returns the number of images in the library.
func (s *Store) CountImages(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM images`); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return n, nil
}

func (s *Store) selectImages(ctx context.Context, query string, args ...any) ([]*Image, error) {
	return selectImages(ctx, s.db, query, args...)
}

func selectImages(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]*Image, error) {
	var rows []*imageRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return rowsToImages(rows), nil
}

func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
