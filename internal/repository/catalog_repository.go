package repository

import (
	"context"

	"gorm.io/gorm"

	"fleet-reporting-service/internal/model"
)

var reportRelations = []string{"vehicles", "vehicle_groups", "bases", "engine_usage", "vehicle_exceptions", "base_transits"}

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Vehicles(ctx context.Context, groupID *int64, page model.PageRequest) (model.Page[model.Vehicle], error) {
	type row struct {
		ID        int64
		Name      string
		GroupID   *int64
		GroupName *string
	}
	var rows []row

	base := r.db.WithContext(ctx).Table("vehicles v")
	if groupID != nil {
		base = base.Where("v.group_id = ?", *groupID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return model.Page[model.Vehicle]{}, err
	}

	query := base.Session(&gorm.Session{}).
		Select("v.id, v.name, v.group_id, g.name AS group_name").
		Joins("LEFT JOIN vehicle_groups g ON g.id = v.group_id").
		Order("v.name ASC, v.id ASC").
		Limit(page.Limit).
		Offset(page.Offset())

	if err := query.Scan(&rows).Error; err != nil {
		return model.Page[model.Vehicle]{}, err
	}

	result := make([]model.Vehicle, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.Vehicle{
			ID:        row.ID,
			Name:      row.Name,
			GroupID:   row.GroupID,
			GroupName: row.GroupName,
		})
	}

	return model.Page[model.Vehicle]{Data: result, Pagination: model.NewPagination(page, total)}, nil
}

// ActiveGroups lists groups flagged active; inactive groups are never exposed.
func (r *CatalogRepository) ActiveGroups(ctx context.Context) ([]model.VehicleGroup, error) {
	var rows []model.VehicleGroup
	err := r.db.WithContext(ctx).
		Table("vehicle_groups g").
		Select("g.id, g.name, g.active").
		Where("g.active = ?", true).
		Order("g.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ready reports whether every relation the reports read from exists.
func (r *CatalogRepository) Ready(ctx context.Context) bool {
	return r.tablesAvailable(ctx, reportRelations...)
}

func (r *CatalogRepository) relationExists(ctx context.Context, name string) bool {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw(`SELECT EXISTS (
			SELECT 1
			FROM pg_catalog.pg_class c
			JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
			WHERE c.relname = ? AND c.relkind IN ('r','m','v') AND n.nspname = 'public'
		)`, name).
		Scan(&exists).Error
	if err != nil {
		return false
	}
	return exists
}

func (r *CatalogRepository) tablesAvailable(ctx context.Context, names ...string) bool {
	for _, name := range names {
		if !r.relationExists(ctx, name) {
			return false
		}
	}
	return true
}
