package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit-dashboard/config"
	"transit-dashboard/models"
)

func TestTripsDAO_ServiceTypeDistribution(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT service_type, COUNT(*) AS trip_count")).
		WillReturnRows(sqlmock.NewRows([]string{"service_type", "trip_count"}).
			AddRow("CITY ORDINARY", 120).
			AddRow("METRO EXPRESS", 45).
			AddRow(nil, 3))

	got, err := NewTripsDAO(db).ServiceTypeDistribution(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []models.ServiceTypeCount{
		{ServiceType: "CITY ORDINARY", TripCount: 120},
		{ServiceType: "METRO EXPRESS", TripCount: 45},
		{ServiceType: "", TripCount: 3},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripsDAO_DailyTrips(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY DATE(in_date)")).
		WithArgs(config.DAILY_TRIPS_LIMIT).
		WillReturnRows(sqlmock.NewRows([]string{"trip_date", "trip_count"}).
			AddRow(time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC), 410).
			AddRow([]byte("2024-11-29"), 388))

	got, err := NewTripsDAO(db).DailyTrips(context.Background(), config.DAILY_TRIPS_LIMIT)

	require.NoError(t, err)
	assert.Equal(t, []models.DailyTripCount{
		{TripDate: "2024-11-30", TripCount: 410},
		{TripDate: "2024-11-29", TripCount: 388},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripsDAO_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT service_type").WillReturnError(boom)

	_, err = NewTripsDAO(db).ServiceTypeDistribution(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestSnapshotTripsStore(t *testing.T) {
	t.Setenv("PROJECT_ROOT", "../..")
	store := NewSnapshotTripsStore(config.GetResourcePath(config.DASHBOARD_TRIPS_RESOURCE))

	types, err := store.ServiceTypeDistribution(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, types)

	days, err := store.DailyTrips(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, days, 3)
	assert.Equal(t, "2024-11-30", days[0].TripDate)
}
