package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ptbxl-annotator/internal/models"

	"go.uber.org/zap"
)

// AnnotationStore 注释文档的输出目标
// docs 以记录名为键；实现按记录名排序写出，保证输出顺序稳定。
type AnnotationStore interface {
	Name() string
	Save(ctx context.Context, docs map[string]*models.AnnotationDocument) error
}

// AnnotationFileRepository 将每个文档写成 <dir>/<record>.json
type AnnotationFileRepository struct {
	dir    string
	logger *zap.Logger
}

// NewAnnotationFileRepository 创建目录输出
func NewAnnotationFileRepository(dir string, logger *zap.Logger) *AnnotationFileRepository {
	return &AnnotationFileRepository{
		dir:    dir,
		logger: logger,
	}
}

// Name 输出名称（用于日志和指标）
func (r *AnnotationFileRepository) Name() string {
	return "file"
}

// Save 写出全部文档；目录不存在时自动创建
func (r *AnnotationFileRepository) Save(ctx context.Context, docs map[string]*models.AnnotationDocument) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", r.dir, err)
	}

	for _, name := range sortedNames(docs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := docs[name].MarshalIndent()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		path := filepath.Join(r.dir, name+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	r.logger.Info("Annotations written", zap.String("dir", r.dir), zap.Int("documents", len(docs)))
	return nil
}

func sortedNames(docs map[string]*models.AnnotationDocument) []string {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
