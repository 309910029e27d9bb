package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt reports stored task data that could not be decoded.
var ErrCorrupt = errors.New("stored task data is corrupt")

// EncodeTasks serializes a collection as a JSON array in collection order.
func EncodeTasks(collection []Task) ([]byte, error) {
	if collection == nil {
		collection = []Task{}
	}
	data, err := json.Marshal(collection)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return data, nil
}

// DecodeTasks parses a JSON array written by EncodeTasks. Blank input and a
// JSON null decode to an empty collection.
func DecodeTasks(data []byte) ([]Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Task{}, nil
	}

	var collection []Task
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if collection == nil {
		collection = []Task{}
	}
	return collection, nil
}
