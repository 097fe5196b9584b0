package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ptbxl-annotator/internal/models"

	"go.uber.org/zap"
)

// Dictionary 编码 → 双语文本 的只读查询接口
// 未知编码返回 ok=false，调用方跳过该编码，不报错。
type Dictionary interface {
	Lookup(code string) (models.Phrase, bool)
}

// CodeDictionary 内存中的编码字典，加载后只读，可在多个 goroutine 间共享
type CodeDictionary struct {
	entries map[string]models.Phrase
}

// NewCodeDictionary 由条目创建字典（拷贝一份，调用方之后的修改不影响字典）
func NewCodeDictionary(entries map[string]models.Phrase) *CodeDictionary {
	copied := make(map[string]models.Phrase, len(entries))
	for code, phrase := range entries {
		copied[code] = phrase
	}
	return &CodeDictionary{entries: copied}
}

// Lookup 精确匹配查询（诊断编码、心电轴、梗死分期）
func (d *CodeDictionary) Lookup(code string) (models.Phrase, bool) {
	p, ok := d.entries[code]
	return p, ok
}

// Len 条目数
func (d *CodeDictionary) Len() int {
	return len(d.entries)
}

// Codes 排序后的全部编码
func (d *CodeDictionary) Codes() []string {
	codes := make([]string, 0, len(d.entries))
	for code := range d.entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LookupFold 先按原样查询，查不到再按大写查询（早搏类型编码）
func LookupFold(d Dictionary, code string) (models.Phrase, bool) {
	if p, ok := d.Lookup(code); ok {
		return p, true
	}
	upper := strings.ToUpper(code)
	if upper == code {
		return models.Phrase{}, false
	}
	return d.Lookup(upper)
}

// ParseDictionaryJSON 解析 JSON 字典文件：{"NORM": ["Норма", "Normal ECG"], ...}
//
// 整个文件不是 JSON 对象时返回错误；单个条目格式不对时记录告警并跳过该条目。
func ParseDictionaryJSON(data []byte, logger *zap.Logger) (*CodeDictionary, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}

	entries := make(map[string]models.Phrase, len(raw))
	skipped := 0
	for code, value := range raw {
		var phrase models.Phrase
		if err := json.Unmarshal(value, &phrase); err != nil {
			skipped++
			logger.Warn("Skipping dictionary entry", zap.String("code", code), zap.Error(err))
			continue
		}
		entries[code] = phrase
	}

	logger.Debug("Dictionary parsed", zap.Int("entries", len(entries)), zap.Int("skipped", skipped))
	return NewCodeDictionary(entries), nil
}
