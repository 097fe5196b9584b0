package transformer

import (
	"time"

	"ptbxl-annotator/internal/models"
)

// dateLayout 微秒精度的 UTC 时间，调用方追加 "Z"
const dateLayout = "2006-01-02T15:04:05.000000"

// FormatDate 格式化注释文档的生成时间，例如 2024-03-05T10:20:30.123456Z
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout) + "Z"
}

// NewAnnotationDocument 组装一份注释文档
func NewAnnotationDocument(record, comment string, now time.Time) *models.AnnotationDocument {
	return &models.AnnotationDocument{
		Version:             models.AnnotationVersion,
		Type:                models.AnnotationType,
		Date:                FormatDate(now),
		Annotator:           models.AnnotatorName,
		Database:            models.DatabaseName,
		Record:              record,
		ConclusionThesaurus: models.ConclusionThesaurus,
		Conclusions:         []string{},
		Comment:             comment,
	}
}
