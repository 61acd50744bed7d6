// Package mysql reads ticketing aggregates from the trips database.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "mysql" driver.
	_ "github.com/go-sql-driver/mysql"

	"transit-dashboard/config"
	"transit-dashboard/models"
)

var (
	serviceTypeQuery = fmt.Sprintf(`
		SELECT service_type, COUNT(*) AS trip_count
		FROM %s
		GROUP BY service_type`, config.TRIPS_TABLE)

	dailyTripsQuery = fmt.Sprintf(`
		SELECT DATE(in_date) AS trip_date, COUNT(*) AS trip_count
		FROM %s
		GROUP BY DATE(in_date)
		ORDER BY trip_date DESC
		LIMIT ?`, config.TRIPS_TABLE)
)

// TripsStore provides the dashboard aggregates.
type TripsStore interface {
	ServiceTypeDistribution(ctx context.Context) ([]models.ServiceTypeCount, error)
	// DailyTrips returns the most recent days first.
	DailyTrips(ctx context.Context, limit int) ([]models.DailyTripCount, error)
}

// TripsDAO runs the aggregate queries against MySQL.
type TripsDAO struct {
	db *sql.DB
}

// NewTripsDAO wraps an open database handle.
func NewTripsDAO(db *sql.DB) *TripsDAO {
	return &TripsDAO{db: db}
}

// Open connects to MySQL and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to mysql: %w", err)
	}
	return db, nil
}

func (dao *TripsDAO) ServiceTypeDistribution(ctx context.Context) ([]models.ServiceTypeCount, error) {
	rows, err := dao.db.QueryContext(ctx, serviceTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("[TripsDAO] service type query failed: %w", err)
	}
	defer rows.Close()

	out := []models.ServiceTypeCount{}
	for rows.Next() {
		var (
			serviceType sql.NullString
			count       int64
		)
		if err := rows.Scan(&serviceType, &count); err != nil {
			return nil, fmt.Errorf("[TripsDAO] failed to scan service type row: %w", err)
		}
		out = append(out, models.ServiceTypeCount{ServiceType: serviceType.String, TripCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[TripsDAO] service type rows failed: %w", err)
	}
	return out, nil
}

func (dao *TripsDAO) DailyTrips(ctx context.Context, limit int) ([]models.DailyTripCount, error) {
	rows, err := dao.db.QueryContext(ctx, dailyTripsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("[TripsDAO] daily trips query failed: %w", err)
	}
	defer rows.Close()

	out := []models.DailyTripCount{}
	for rows.Next() {
		var (
			tripDate interface{}
			count    int64
		)
		if err := rows.Scan(&tripDate, &count); err != nil {
			return nil, fmt.Errorf("[TripsDAO] failed to scan daily trips row: %w", err)
		}
		out = append(out, models.DailyTripCount{TripDate: formatDate(tripDate), TripCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[TripsDAO] daily trips rows failed: %w", err)
	}
	return out, nil
}

// formatDate renders DATE columns the same way with or without parseTime in the DSN.
func formatDate(v interface{}) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case []byte:
		return string(d)
	case string:
		return d
	case nil:
		return ""
	default:
		return fmt.Sprint(d)
	}
}
