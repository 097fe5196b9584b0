package repository

import (
	"context"
	"fmt"
	"os"

	commoncfg "ptbxl-annotator/common/config"
	"ptbxl-annotator/common/database"
	"ptbxl-annotator/common/httpclient"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DictionaryLoader 按来源类型加载编码字典
//   - postgres:// 或 postgresql:// 连接串 → PostgreSQL 字典表
//   - http:// 或 https:// 地址 → 下载 JSON 文件
//   - 其他 → 本地 JSON 文件路径
type DictionaryLoader struct {
	httpClient *resty.Client
	database   commoncfg.DatabaseConfig
	table      string
	logger     *zap.Logger
}

// NewDictionaryLoader 创建字典加载器
func NewDictionaryLoader(httpClient *resty.Client, db commoncfg.DatabaseConfig, table string, logger *zap.Logger) *DictionaryLoader {
	return &DictionaryLoader{
		httpClient: httpClient,
		database:   db,
		table:      table,
		logger:     logger,
	}
}

// Load 加载字典
func (l *DictionaryLoader) Load(ctx context.Context, source string) (*CodeDictionary, error) {
	if commoncfg.IsPostgresDSN(source) {
		return l.loadPostgres(ctx, source)
	}

	var data []byte
	var err error
	if httpclient.IsURL(source) {
		data, err = httpclient.Fetch(ctx, l.httpClient, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", source, err)
	}

	dict, err := ParseDictionaryJSON(data, l.logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	l.logger.Info("Dictionary loaded", zap.String("source", source), zap.Int("entries", dict.Len()))
	return dict, nil
}

func (l *DictionaryLoader) loadPostgres(ctx context.Context, dsn string) (*CodeDictionary, error) {
	cfg := l.database
	cfg.DSN = dsn
	db, err := database.NewPostgresDB(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	defer database.Close(db)

	dict, err := NewPostgresDictionaryRepository(db, l.table, l.logger).LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Dictionary loaded", zap.String("source", "postgres"), zap.String("table", l.table), zap.Int("entries", dict.Len()))
	return dict, nil
}
