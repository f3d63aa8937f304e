package redis

import (
	"context"
	"fmt"
	"strconv"
)

// AddOperator stores an operator ID in the allow-set.
func (s *Store) AddOperator(ctx context.Context, id int64) error {
	if err := s.client.SAdd(ctx, OperatorsKey(), strconv.FormatInt(id, 10)).Err(); err != nil {
		return fmt.Errorf("failed to add operator to set: %w", err)
	}
	return nil
}

// RemoveOperator removes an operator ID from the allow-set.
func (s *Store) RemoveOperator(ctx context.Context, id int64) error {
	if err := s.client.SRem(ctx, OperatorsKey(), strconv.FormatInt(id, 10)).Err(); err != nil {
		return fmt.Errorf("failed to remove operator from set: %w", err)
	}
	return nil
}

// Operators retrieves all allowed operator IDs.
func (s *Store) Operators(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, OperatorsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get operators: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			// Skip members that couldn't be parsed
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
