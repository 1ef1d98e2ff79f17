package db

import (
	"context"
	"database/sql"
	"fmt"

	"cityguard/models"
)

type NewReport struct {
	UserID      int64
	CategoryID  *int64
	Description string
	Image       string
	Latitude    float64
	Longitude   float64
}

// CreateReport inserts a report with the default status and returns its id.
func CreateReport(ctx context.Context, r NewReport) (int64, error) {
	var image sql.NullString
	if r.Image != "" {
		image = sql.NullString{String: r.Image, Valid: true}
	}
	var category sql.NullInt64
	if r.CategoryID != nil {
		category = sql.NullInt64{Int64: *r.CategoryID, Valid: true}
	}

	id, err := insert(ctx,
		"INSERT INTO reports (user_id, category_id, description, image, latitude, longitude, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.UserID, category, r.Description, image, r.Latitude, r.Longitude, models.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("db.CreateReport: %w", err)
	}
	return id, nil
}

// ListReports returns every report, newest first.
func ListReports(ctx context.Context) ([]models.Report, error) {
	rows, err := DB.QueryContext(ctx,
		"SELECT id, user_id, category_id, description, image, latitude, longitude, status, created_at FROM reports ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("db.ListReports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var (
			r        models.Report
			category sql.NullInt64
			image    sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.UserID, &category, &r.Description, &image, &r.Latitude, &r.Longitude, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("db.ListReports scan: %w", err)
		}
		if category.Valid {
			id := category.Int64
			r.CategoryID = &id
		}
		r.Image = image.String
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db.ListReports rows: %w", err)
	}
	return reports, nil
}
