package repository

import (
	"context"

	"gorm.io/gorm"
)

// Executor runs a parameterized SELECT and scans the rows into dest.
type Executor interface {
	Select(ctx context.Context, dest any, sql string, args ...any) error
}

type GormExecutor struct {
	db *gorm.DB
}

func NewGormExecutor(db *gorm.DB) *GormExecutor {
	return &GormExecutor{db: db}
}

func (e *GormExecutor) Select(ctx context.Context, dest any, sql string, args ...any) error {
	return e.db.WithContext(ctx).Raw(sql, args...).Scan(dest).Error
}
