package repository

import (
	"context"
	"fmt"

	rediscommon "ptbxl-annotator/common/redis"
	"ptbxl-annotator/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnnotationStreamRepository 将注释文档发布到 Redis Stream（每个文档一条消息）
// 消息字段：record、data（文档 JSON）、timestamp
type AnnotationStreamRepository struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewAnnotationStreamRepository 创建 Stream 输出
func NewAnnotationStreamRepository(client *redis.Client, stream string, logger *zap.Logger) *AnnotationStreamRepository {
	return &AnnotationStreamRepository{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Name 输出名称
func (r *AnnotationStreamRepository) Name() string {
	return "redis"
}

// Save 逐条 XADD
func (r *AnnotationStreamRepository) Save(ctx context.Context, docs map[string]*models.AnnotationDocument) error {
	for _, name := range sortedNames(docs) {
		data, err := docs[name].MarshalIndent()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if _, err := rediscommon.PublishToStream(ctx, r.client, r.stream, map[string]interface{}{
			"record":    name,
			"data":      data,
			"timestamp": docs[name].Date,
		}); err != nil {
			return fmt.Errorf("failed to publish %s to stream %s: %w", name, r.stream, err)
		}
	}

	r.logger.Info("Annotations published to stream", zap.String("stream", r.stream), zap.Int("documents", len(docs)))
	return nil
}
