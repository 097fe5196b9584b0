package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"ptbxl-annotator/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresDictionaryRepository 从 PostgreSQL 表加载编码字典
//
// 表结构：code TEXT PRIMARY KEY, phrase JSONB（与 JSON 字典文件中的值格式相同）
type PostgresDictionaryRepository struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewPostgresDictionaryRepository 创建字典仓库
func NewPostgresDictionaryRepository(db *sql.DB, table string, logger *zap.Logger) *PostgresDictionaryRepository {
	return &PostgresDictionaryRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// LoadAll 读取整张字典表
func (r *PostgresDictionaryRepository) LoadAll(ctx context.Context) (*CodeDictionary, error) {
	query := fmt.Sprintf(`SELECT code, phrase FROM %s ORDER BY code`, pq.QuoteIdentifier(r.table))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query dictionary table %s: %w", r.table, err)
	}
	defer rows.Close()

	entries := make(map[string]models.Phrase)
	for rows.Next() {
		var code string
		var raw []byte
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan dictionary row: %w", err)
		}
		var phrase models.Phrase
		if err := json.Unmarshal(raw, &phrase); err != nil {
			r.logger.Warn("Skipping dictionary entry", zap.String("code", code), zap.Error(err))
			continue
		}
		entries[code] = phrase
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dictionary rows: %w", err)
	}

	return NewCodeDictionary(entries), nil
}
