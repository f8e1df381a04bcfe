// Package gormdb persists interaction events through GORM.
package gormdb

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shopcomplex/storefront/internal/domain"
)

type InteractionRepo struct{ db *gorm.DB }

func NewInteractionRepo(db *gorm.DB) *InteractionRepo { return &InteractionRepo{db: db} }

func (r *InteractionRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Interaction{})
}

func (r *InteractionRepo) Record(ctx context.Context, in *domain.Interaction) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	if in.Kind == "" {
		in.Kind = domain.InteractionView
	}
	return r.db.WithContext(ctx).Create(in).Error
}

func (r *InteractionRepo) Since(ctx context.Context, cutoff time.Time) ([]domain.Interaction, error) {
	var out []domain.Interaction
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *InteractionRepo) BySession(ctx context.Context, sessionID string) ([]domain.Interaction, error) {
	var out []domain.Interaction
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
