package util

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"transit-dashboard/models"
)

// ReadRawJSON loads a JSON document from disk without decoding it.
func ReadRawJSON(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("file %q does not hold valid JSON", filePath)
	}
	return data, nil
}

// ReadKeysResponseFromJSON loads a KeysResponse from JSON on disk.
func ReadKeysResponseFromJSON(filePath string) (*models.KeysResponse, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var resp models.KeysResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal KeysResponse: %w", err)
	}
	return &resp, nil
}

// ReadTripsSnapshotFromJSON loads a TripsSnapshot from JSON on disk.
func ReadTripsSnapshotFromJSON(filePath string) (*models.TripsSnapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var snapshot models.TripsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal TripsSnapshot: %w", err)
	}
	return &snapshot, nil
}
