package repository

import (
	"context"
	"time"

	infrastructure "campus-intake/internal/interfaces/infrastructure"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// StatsRepository answers the dashboard aggregates with raw SQL over
// sqlx. The queries are read-only rollups, so they bypass the ORM and
// scan straight into the stats structs.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository wraps the GORM connection pool for sqlx queries
func NewStatsRepository(gormDB *gorm.DB) (infrastructure.StatsRepository, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	return &StatsRepository{
		db: sqlx.NewDb(sqlDB, "postgres"),
	}, nil
}

// DashboardStats aggregates total registrations, the per-level
// breakdown, today's expected and checked-in counts, and slot
// utilization for the given day
func (r *StatsRepository) DashboardStats(ctx context.Context, today time.Time) (*infrastructure.DashboardStats, error) {
	stats := &infrastructure.DashboardStats{}
	day := today.Format("2006-01-02")

	if err := r.db.GetContext(ctx, &stats.TotalRegistered,
		"SELECT COUNT(*) FROM students"); err != nil {
		return nil, err
	}

	const breakdownQuery = `
		SELECT l.name AS name, COUNT(s.student_id) AS value
		FROM levels l
		LEFT JOIN students s ON s.level_id = l.level_id
		GROUP BY l.name, l.sort_order
		ORDER BY l.sort_order ASC`
	if err := r.db.SelectContext(ctx, &stats.BreakdownByLevel, breakdownQuery); err != nil {
		return nil, err
	}

	if err := r.db.GetContext(ctx, &stats.TodayExpected,
		"SELECT COUNT(*) FROM students WHERE intake_date = $1", day); err != nil {
		return nil, err
	}

	if err := r.db.GetContext(ctx, &stats.CheckedIn,
		"SELECT COUNT(*) FROM students WHERE intake_date = $1 AND status = 'checked-in'", day); err != nil {
		return nil, err
	}

	const utilizationQuery = `
		SELECT date, start_time, booked, capacity
		FROM appointment_slots
		WHERE date = $1
		ORDER BY start_time ASC`
	if err := r.db.SelectContext(ctx, &stats.SlotUtilization, utilizationQuery, day); err != nil {
		return nil, err
	}

	return stats, nil
}
