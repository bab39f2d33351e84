package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"belt-and-braces/internal/domain"
)

var (
	ErrBuildNotFound = errors.New("build not found")
)

// BuildRepository defines the interface for build data access
type BuildRepository interface {
	Create(ctx context.Context, build *domain.Build) error
	Update(ctx context.Context, build *domain.Build) error
	FindByID(ctx context.Context, productID, id int64) (*domain.Build, error)
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Build, error)
}

type buildRepository struct {
	db *sql.DB
}

// NewBuildRepository creates a new instance of BuildRepository
func NewBuildRepository(db *sql.DB) BuildRepository {
	return &buildRepository{db: db}
}

// Create inserts a new build and fills in its store-assigned id
func (r *buildRepository) Create(ctx context.Context, build *domain.Build) error {
	query := `
		INSERT INTO builds (product_id, description, source, version, timestamp, target, taxonomy, sha512)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		build.ProductID,
		build.Description,
		build.Source,
		build.Version,
		build.Timestamp,
		build.Target,
		build.Taxonomy,
		build.SHA512,
	).Scan(&build.ID)

	if err != nil {
		return fmt.Errorf("failed to create build: %w", err)
	}

	return nil
}

// Update replaces all mutable fields of an existing build. The build is
// addressed through its owning product so a build can never be reassigned.
func (r *buildRepository) Update(ctx context.Context, build *domain.Build) error {
	query := `
		UPDATE builds
		SET description = $3, source = $4, version = $5, timestamp = $6, target = $7, taxonomy = $8, sha512 = $9
		WHERE id = $1 AND product_id = $2
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		build.ID,
		build.ProductID,
		build.Description,
		build.Source,
		build.Version,
		build.Timestamp,
		build.Target,
		build.Taxonomy,
		build.SHA512,
	)

	if err != nil {
		return fmt.Errorf("failed to update build: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBuildNotFound
	}

	return nil
}

// FindByID retrieves one build of the given product
func (r *buildRepository) FindByID(ctx context.Context, productID, id int64) (*domain.Build, error) {
	query := `
		SELECT id, product_id, description, source, version, timestamp, target, taxonomy, sha512
		FROM builds
		WHERE id = $1 AND product_id = $2
	`

	build := &domain.Build{}
	err := r.db.QueryRowContext(ctx, query, id, productID).Scan(
		&build.ID,
		&build.ProductID,
		&build.Description,
		&build.Source,
		&build.Version,
		&build.Timestamp,
		&build.Target,
		&build.Taxonomy,
		&build.SHA512,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBuildNotFound
		}
		return nil, fmt.Errorf("failed to find build by ID: %w", err)
	}

	return build, nil
}

// ListByProduct retrieves all builds owned by a product
func (r *buildRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Build, error) {
	query := `
		SELECT id, product_id, description, source, version, timestamp, target, taxonomy, sha512
		FROM builds
		WHERE product_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	builds := []*domain.Build{}
	for rows.Next() {
		build := &domain.Build{}
		err := rows.Scan(
			&build.ID,
			&build.ProductID,
			&build.Description,
			&build.Source,
			&build.Version,
			&build.Timestamp,
			&build.Target,
			&build.Taxonomy,
			&build.SHA512,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		builds = append(builds, build)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating builds: %w", err)
	}

	return builds, nil
}
