package cart

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is the key-value byte store a cart persists to. Get reports
// found=false, not an error, for a missing key. Delete of a missing key is
// not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func encodeItems(items []LineItem) ([]byte, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

// decodeItems parses a stored record and rejects anything a cart could not
// have written: non-positive quantities, blank or repeated product ids.
func decodeItems(data []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, li := range items {
		if li.Product.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no product id", ErrCorruptRecord, i)
		}
		if li.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d has quantity %d", ErrCorruptRecord, i, li.Quantity)
		}
		if _, dup := seen[li.Product.ID]; dup {
			return nil, fmt.Errorf("%w: product %s appears twice", ErrCorruptRecord, li.Product.ID)
		}
		seen[li.Product.ID] = struct{}{}
	}

	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
