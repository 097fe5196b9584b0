package service

import (
	"context"
	"fmt"
	"time"

	"ptbxl-annotator/internal/config"
	"ptbxl-annotator/internal/metrics"
	"ptbxl-annotator/internal/models"
	"ptbxl-annotator/internal/repository"
	"ptbxl-annotator/internal/transformer"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RowSource 注释表行数据来源
type RowSource interface {
	ReadRows(ctx context.Context, source string) ([]models.Row, error)
}

// AnnotationBatch 一批注释文档
type AnnotationBatch struct {
	Documents  map[string]*models.AnnotationDocument // 记录名 → 文档
	Rows       int
	Duplicates int // 与前面行记录名相同的行数（后出现的行覆盖前面的）
}

// Summary 一次运行的结果
type Summary struct {
	RunID      string
	Rows       int
	Documents  int
	Duplicates int
	Stores     []string
	Duration   time.Duration
}

// AnnotatorService 注释生成服务：读取注释表，逐行生成注释文档，写入全部存储
type AnnotatorService struct {
	workers     int
	synthesizer *transformer.CommentSynthesizer
	source      RowSource
	stores      []repository.AnnotationStore
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewAnnotatorService 创建注释生成服务
// m 可以为 nil；stores 按顺序写入，任何一个失败即中止。
func NewAnnotatorService(
	cfg *config.Config,
	dict repository.Dictionary,
	source RowSource,
	stores []repository.AnnotationStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AnnotatorService {
	workers := cfg.Annotator.Workers
	if workers <= 0 {
		workers = 1
	}
	return &AnnotatorService{
		workers:     workers,
		synthesizer: transformer.NewCommentSynthesizer(dict, m, logger),
		source:      source,
		stores:      stores,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// BuildAnnotations 为每一行生成注释文档
//
// 行之间互不依赖，由 worker 并行处理；结果按表格顺序合并，
// 记录名重复时后出现的行覆盖前面的。任何一行解析失败即返回错误。
func (s *AnnotatorService) BuildAnnotations(ctx context.Context, rows []models.Row) (*AnnotationBatch, error) {
	docs := make([]*models.AnnotationDocument, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range rows {
		if gctx.Err() != nil {
			break
		}
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := models.ParseRecord(row)
			if err != nil {
				// 表头占第 1 行
				return fmt.Errorf("row %d: %w", i+2, err)
			}
			comment := s.synthesizer.Synthesize(rec)
			docs[i] = transformer.NewAnnotationDocument(rec.Name(), comment, s.now())
			s.metrics.RecordProcessed()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &AnnotationBatch{
		Documents: make(map[string]*models.AnnotationDocument, len(docs)),
		Rows:      len(rows),
	}
	for i, doc := range docs {
		if _, exists := batch.Documents[doc.Record]; exists {
			batch.Duplicates++
			s.metrics.DuplicateRecord()
			s.logger.Warn("Duplicate record, later row replaces earlier one",
				zap.String("record", doc.Record),
				zap.Int("row", i+2),
			)
		}
		batch.Documents[doc.Record] = doc
	}
	return batch, nil
}

// Run 处理一个注释表并写入全部存储
func (s *AnnotatorService) Run(ctx context.Context, tableSource string) (*Summary, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := s.logger.With(zap.String("run_id", runID))

	logger.Info("Starting annotation run",
		zap.String("source", tableSource),
		zap.Int("workers", s.workers),
		zap.Int("stores", len(s.stores)),
	)

	rows, err := s.source.ReadRows(ctx, tableSource)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation table: %w", err)
	}

	batch, err := s.BuildAnnotations(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build annotations: %w", err)
	}

	summary := &Summary{
		RunID:      runID,
		Rows:       batch.Rows,
		Documents:  len(batch.Documents),
		Duplicates: batch.Duplicates,
	}
	for _, store := range s.stores {
		if err := store.Save(ctx, batch.Documents); err != nil {
			return nil, fmt.Errorf("failed to save annotations to %s store: %w", store.Name(), err)
		}
		s.metrics.DocumentsWritten(store.Name(), len(batch.Documents))
		summary.Stores = append(summary.Stores, store.Name())
	}

	summary.Duration = time.Since(start)
	s.metrics.ObserveBatch(summary.Duration)

	logger.Info("Annotation run finished",
		zap.Int("rows", summary.Rows),
		zap.Int("documents", summary.Documents),
		zap.Int("duplicates", summary.Duplicates),
		zap.Strings("stores", summary.Stores),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}
