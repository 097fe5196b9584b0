package repository

import (
	"context"
	"fmt"
	"strings"

	mqttcommon "ptbxl-annotator/common/mqtt"
	"ptbxl-annotator/internal/models"

	"go.uber.org/zap"
)

// AnnotationMQTTRepository 将注释文档发布到 MQTT 主题 <prefix>/<record>
type AnnotationMQTTRepository struct {
	publisher   mqttcommon.Publisher
	topicPrefix string
	qos         byte
	logger      *zap.Logger
}

// NewAnnotationMQTTRepository 创建 MQTT 输出
func NewAnnotationMQTTRepository(publisher mqttcommon.Publisher, topicPrefix string, qos byte, logger *zap.Logger) *AnnotationMQTTRepository {
	return &AnnotationMQTTRepository{
		publisher:   publisher,
		topicPrefix: strings.TrimRight(topicPrefix, "/"),
		qos:         qos,
		logger:      logger,
	}
}

// Name 输出名称
func (r *AnnotationMQTTRepository) Name() string {
	return "mqtt"
}

// Topic 记录对应的主题
func (r *AnnotationMQTTRepository) Topic(record string) string {
	return r.topicPrefix + "/" + record
}

// Save 逐条发布（retained，订阅者上线后可以拿到最新文档）
func (r *AnnotationMQTTRepository) Save(ctx context.Context, docs map[string]*models.AnnotationDocument) error {
	for _, name := range sortedNames(docs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := docs[name].MarshalIndent()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := r.publisher.Publish(r.Topic(name), r.qos, true, data); err != nil {
			return err
		}
	}

	r.logger.Info("Annotations published to MQTT", zap.String("topic_prefix", r.topicPrefix), zap.Int("documents", len(docs)))
	return nil
}
