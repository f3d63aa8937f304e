package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/isotoolkit/keeper/internal/domain"
)

// SaveFolders stores an operator's folder labels as one JSON document,
// preserving order (the last entry is the current folder).
func (s *Store) SaveFolders(ctx context.Context, operator int64, folders []*domain.Folder) error {
	key := FoldersKey(operator)

	if len(folders) == 0 {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete folders: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(folders)
	if err != nil {
		return fmt.Errorf("failed to marshal folders: %w", err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save folders: %w", err)
	}
	return nil
}

// AllFolders retrieves folder labels for every operator.
func (s *Store) AllFolders(ctx context.Context) (map[int64][]*domain.Folder, error) {
	all := make(map[int64][]*domain.Folder)

	iter := s.client.Scan(ctx, 0, KeyPrefixFolders+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		operator, err := ExtractOperatorID(key)
		if err != nil {
			// Skip keys that couldn't be parsed
			continue
		}

		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var folders []*domain.Folder
		if err := json.Unmarshal(data, &folders); err != nil {
			continue
		}
		all[operator] = folders
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan folders: %w", err)
	}

	return all, nil
}
