package repository

import (
	"context"
	"errors"

	"allegro_dev_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== ClientRepository 买家仓库 ====================

// ClientRepository Allegro 买家仓库接口
type ClientRepository interface {
	GetByAllegroID(ctx context.Context, allegroID string) (*model.Client, error)
	// Upsert 按 allegro_id 创建或更新，返回落库后的行 (订单外键需要主键)
	Upsert(ctx context.Context, client *model.Client) (*model.Client, error)
}

type clientRepo struct {
	db *gorm.DB
}

// NewClientRepository 创建买家仓库
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) GetByAllegroID(ctx context.Context, allegroID string) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).Where("allegro_id = ?", allegroID).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) Upsert(ctx context.Context, client *model.Client) (*model.Client, error) {
	var existing model.Client
	err := r.db.WithContext(ctx).Where("allegro_id = ?", client.AllegroID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
			return nil, err
		}
		return client, nil
	}
	if err != nil {
		return nil, err
	}

	client.ID = existing.ID
	client.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}
