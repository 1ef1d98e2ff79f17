package db

import (
	"context"
	"fmt"

	"cityguard/models"

	"github.com/apex/log"
	"github.com/gosimple/slug"
)

var DefaultCategories = []string{
	"Pothole",
	"Street lighting",
	"Illegal dumping",
	"Graffiti",
	"Damaged sign",
	"Other",
}

func seedCategories(ctx context.Context) error {
	var count int
	if err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, name := range DefaultCategories {
		if _, err := CreateCategory(ctx, name); err != nil {
			return err
		}
	}
	log.Infof("seeded %d default categories", len(DefaultCategories))
	return nil
}

func CreateCategory(ctx context.Context, name string) (int64, error) {
	id, err := insert(ctx, "INSERT INTO categories (name, slug) VALUES (?, ?)", name, slug.Make(name))
	if err != nil {
		return 0, fmt.Errorf("db.CreateCategory %q: %w", name, err)
	}
	return id, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := DB.QueryContext(ctx, "SELECT id, name, slug FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("db.ListCategories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("db.ListCategories scan: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func CategoryExists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := DB.QueryRowContext(ctx, rebind("SELECT COUNT(*) FROM categories WHERE id = ?"), id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("db.CategoryExists: %w", err)
	}
	return count > 0, nil
}
