package store

import (
	"context"
	"errors"

	"basegraph.app/siemd/core/db/sqlc"
	"basegraph.app/siemd/internal/model"
	"github.com/jackc/pgx/v5"
)

type fileOffsetStore struct {
	queries *sqlc.Queries
}

func newFileOffsetStore(queries *sqlc.Queries) FileOffsetStore {
	return &fileOffsetStore{queries: queries}
}

func (s *fileOffsetStore) Get(ctx context.Context, path string) (*model.FileOffset, error) {
	row, err := s.queries.GetFileOffset(ctx, path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toFileOffsetModel(row), nil
}

func (s *fileOffsetStore) Upsert(ctx context.Context, offset model.FileOffset) error {
	return s.queries.UpsertFileOffset(ctx, sqlc.UpsertFileOffsetParams{
		Path:      offset.Path,
		Inode:     offset.Inode,
		Offset:    offset.Offset,
		UpdatedAt: offset.UpdatedAt,
	})
}

func (s *fileOffsetStore) List(ctx context.Context) ([]model.FileOffset, error) {
	rows, err := s.queries.ListFileOffsets(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]model.FileOffset, 0, len(rows))
	for _, row := range rows {
		result = append(result, *toFileOffsetModel(row))
	}
	return result, nil
}

func toFileOffsetModel(row sqlc.FileOffset) *model.FileOffset {
	return &model.FileOffset{
		Path:      row.Path,
		Inode:     row.Inode,
		Offset:    row.Offset,
		UpdatedAt: row.UpdatedAt,
	}
}
