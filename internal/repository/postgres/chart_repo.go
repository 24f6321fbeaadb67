package postgres

import (
	"context"

	"github.com/Rijass/Spotify-Stats/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type chartRepository struct {
	db *gorm.DB
}

func NewChartRepository(db *gorm.DB) *chartRepository {
	return &chartRepository{db: db}
}

func (r *chartRepository) CreateSnapshot(ctx context.Context, snapshot *domain.ChartSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *chartRepository) GetSnapshot(ctx context.Context, chartKey string, date datatypes.Date) (*domain.ChartSnapshot, error) {
	var snapshot domain.ChartSnapshot
	err := r.db.WithContext(ctx).
		First(&snapshot, "chart_key = ? AND chart_date = ?", chartKey, date).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *chartRepository) GetLatestSnapshot(ctx context.Context, chartKey string) (*domain.ChartSnapshot, error) {
	var snapshot domain.ChartSnapshot
	err := r.db.WithContext(ctx).
		Where("chart_key = ?", chartKey).
		Order("chart_date DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *chartRepository) AddEntry(ctx context.Context, entry *domain.ChartEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *chartRepository) FindEntries(ctx context.Context, snapshotID uint64, limit int) ([]*domain.ChartEntry, error) {
	var entries []*domain.ChartEntry
	query := r.db.WithContext(ctx).
		Preload("Song").
		Where("snapshot_id = ?", snapshotID).
		Order("position ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *chartRepository) CountEntries(ctx context.Context, snapshotID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ChartEntry{}).
		Where("snapshot_id = ?", snapshotID).
		Count(&count).Error
	return count, err
}

func (r *chartRepository) DeleteEntries(ctx context.Context, snapshotID uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.ChartEntry{}, "snapshot_id = ?", snapshotID).Error
}
