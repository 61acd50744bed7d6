package mysql

import (
	"context"
	"fmt"

	"transit-dashboard/models"
	"transit-dashboard/util"
)

// SnapshotTripsStore serves trip aggregates from a JSON resource.
type SnapshotTripsStore struct {
	path string
}

// NewSnapshotTripsStore reads the snapshot at path on every call.
func NewSnapshotTripsStore(path string) *SnapshotTripsStore {
	return &SnapshotTripsStore{path: path}
}

func (s *SnapshotTripsStore) ServiceTypeDistribution(ctx context.Context) ([]models.ServiceTypeCount, error) {
	snapshot, err := util.ReadTripsSnapshotFromJSON(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not read trips snapshot: %w", err)
	}
	return snapshot.ServiceTypes, nil
}

func (s *SnapshotTripsStore) DailyTrips(ctx context.Context, limit int) ([]models.DailyTripCount, error) {
	snapshot, err := util.ReadTripsSnapshotFromJSON(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not read trips snapshot: %w", err)
	}
	days := snapshot.DailyTrips
	if limit > 0 && len(days) > limit {
		days = days[:limit]
	}
	return days, nil
}
