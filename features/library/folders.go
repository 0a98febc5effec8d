package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagan/naimeta/util/stringutil"
)

// CreateFolder adds a folder. The name is cleaned and must not be empty.
func (s *Store) CreateFolder(ctx context.Context, name, color string) (*Folder, error) {
	name = stringutil.CleanTitle(name)
	if name == "" {
		return nil, errors.New("folder name is empty")
	}
	folder := &Folder{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		CreatedAt: time.Now().UnixMilli(),
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO folders (id, name, color, created_at) VALUES (:id, :name, :color, :created_at)`, folder)
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return folder, nil
}

// GetFolder fetches a folder by id.
func (s *Store) GetFolder(ctx context.Context, id string) (*Folder, error) {
	var folder Folder
	err := s.db.GetContext(ctx, &folder, `SELECT id, name, color, created_at FROM folders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &folder, nil
}

// FindFolder returns the first folder named name (exact match).
func (s *Store) FindFolder(ctx context.Context, name string) (*Folder, error) {
	var folder Folder
	err := s.db.GetContext(ctx, &folder,
		`SELECT id, name, color, created_at FROM folders WHERE name = ? ORDER BY created_at LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find folder: %w", err)
	}
	return &folder, nil
}

// ListFolders returns all folders sorted by name.
func (s *Store) ListFolders(ctx context.Context) ([]*Folder, error) {
	var folders []*Folder
	err := s.db.SelectContext(ctx, &folders,
		`SELECT id, name, color, created_at FROM folders ORDER BY name, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

// RenameFolder changes the name of a folder.
func (s *Store) RenameFolder(ctx context.Context, id, name string) error {
	name = stringutil.CleanTitle(name)
	if name == "" {
		return errors.New("folder name is empty")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE folders SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}
	return expectAffected(res, "folder", id)
}

// SetFolderColor changes the display color of a folder.
func (s *Store) SetFolderColor(ctx context.Context, id, color string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE folders SET color = ? WHERE id = ?`, color, id)
	if err != nil {
		return fmt.Errorf("set folder color: %w", err)
	}
	return expectAffected(res, "folder", id)
}

// DeleteFolder removes a folder. Its images are moved to the root, not deleted.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE images SET folder_id = NULL WHERE folder_id = ?`, id); err != nil {
		return fmt.Errorf("release folder images: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if err := expectAffected(res, "folder", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete folder: %w", err)
	}
	return nil
}

// CountImagesInFolder returns how many images folderID holds. Empty folderID counts the root.
func (s *Store) CountImagesInFolder(ctx context.Context, folderID string) (int, error) {
	var n int
	var err error
	if folderID == "" {
		err = s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM images WHERE folder_id IS NULL`)
	} else {
		err = s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM images WHERE folder_id = ?`, folderID)
	}
	if err != nil {
		return 0, fmt.Errorf("count folder images: %w", err)
	}
	return n, nil
}
