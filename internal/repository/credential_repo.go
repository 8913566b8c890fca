package repository

import (
	"context"
	"errors"
	"time"

	"allegro_dev_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== CredentialRepository 凭证仓库 ====================

// CredentialRepository Allegro 凭证仓库接口
type CredentialRepository interface {
	GetByOwnerID(ctx context.Context, ownerID int64) (*model.Credential, error)
	// FindExpiring 查找有 refresh_token 且在 now+horizon 前过期的凭证
	// now 由调用方显式传入，保证刷新逻辑可测试
	FindExpiring(ctx context.Context, now time.Time, horizon time.Duration) ([]model.Credential, error)
	// FindActive 查找 Token 状态正常的凭证 (定时订单同步的遍历范围)
	FindActive(ctx context.Context) ([]model.Credential, error)
	// SaveOrUpdate 按 OwnerID 创建或整体更新
	SaveOrUpdate(ctx context.Context, cred *model.Credential) error
	UpdateTokenStatus(ctx context.Context, ownerID int64, status string) error
}

type credentialRepo struct {
	db *gorm.DB
}

// NewCredentialRepository 创建凭证仓库
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) GetByOwnerID(ctx context.Context, ownerID int64) (*model.Credential, error) {
	var cred model.Credential
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepo) FindExpiring(ctx context.Context, now time.Time, horizon time.Duration) ([]model.Credential, error) {
	var creds []model.Credential
	threshold := now.Add(horizon)
	err := r.db.WithContext(ctx).
		Where("refresh_token <> ''").
		Where("token_expires_at <= ?", threshold).
		Find(&creds).Error
	return creds, err
}

func (r *credentialRepo) FindActive(ctx context.Context) ([]model.Credential, error) {
	var creds []model.Credential
	err := r.db.WithContext(ctx).
		Where("token_status = ?", model.TokenStatusValid).
		Where("access_token <> ''").
		Find(&creds).Error
	return creds, err
}

func (r *credentialRepo) SaveOrUpdate(ctx context.Context, cred *model.Credential) error {
	var existing model.Credential
	err := r.db.WithContext(ctx).Where("owner_id = ?", cred.OwnerID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(cred).Error
	}
	if err != nil {
		return err
	}

	// 保留主键和创建时间，整体覆盖其余字段
	cred.ID = existing.ID
	cred.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(cred).Error
}

func (r *credentialRepo) UpdateTokenStatus(ctx context.Context, ownerID int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Credential{}).
		Where("owner_id = ?", ownerID).
		Update("token_status", status).Error
}
