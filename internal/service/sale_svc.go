package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"allegro_dev_v1_202608/internal/repository"
	"allegro_dev_v1_202608/pkg/allegro"
)

// 销售辅助接口错误
var (
	ErrQueryTooShort = errors.New("类目搜索关键字至少需要 2 个字符")
)

// ==================== SaleService ====================

// SaleService 发布前置数据服务：运费模板、类目搜索、类目参数
// 全部是对 Allegro 的实时透传，不落库
type SaleService struct {
	credRepo repository.CredentialRepository
	client   *allegro.Client
}

// NewSaleService 创建销售辅助服务
func NewSaleService(credRepo repository.CredentialRepository, client *allegro.Client) *SaleService {
	return &SaleService{credRepo: credRepo, client: client}
}

// accessToken 取 owner 当前可用的 access token
func (s *SaleService) accessToken(ctx context.Context, ownerID int64) (string, error) {
	cred, err := s.credRepo.GetByOwnerID(ctx, ownerID)
	if err != nil || cred.AccessToken == "" {
		return "", ErrNoCredential
	}
	return cred.AccessToken, nil
}

// ListShippingRates 卖家账号下的运费模板列表
func (s *SaleService) ListShippingRates(ctx context.Context, ownerID int64) ([]allegro.ShippingRate, error) {
	token, err := s.accessToken(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.GetShippingRates(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("拉取运费模板失败: %w", err)
	}
	return resp.ShippingRates, nil
}

// SearchCategories 按名称搜索类目，关键字太短直接拒绝
func (s *SaleService) SearchCategories(ctx context.Context, ownerID int64, query string) ([]allegro.Category, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return nil, ErrQueryTooShort
	}

	token, err := s.accessToken(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.SearchCategories(ctx, token, query)
	if err != nil {
		return nil, fmt.Errorf("搜索类目失败: %w", err)
	}
	return resp.Categories, nil
}

// GetCategoryParameters 类目参数模板，原样透传给前端渲染动态表单
func (s *SaleService) GetCategoryParameters(ctx context.Context, ownerID int64, categoryID string) (json.RawMessage, error) {
	if categoryID == "" {
		return nil, fmt.Errorf("类目 ID 不能为空")
	}

	token, err := s.accessToken(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.GetCategoryParameters(ctx, token, categoryID)
	if err != nil {
		return nil, fmt.Errorf("拉取类目参数失败: %w", err)
	}
	return raw, nil
}
