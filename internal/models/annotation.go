package models

import (
	"bytes"
	"encoding/json"
)

// AnnotationDocument 单条记录的注释文档
// 字段顺序即 JSON 键顺序，下游会直接比对文件文本，不要调整。
type AnnotationDocument struct {
	Version             int      `json:"version"`
	Type                string   `json:"type"`
	Date                string   `json:"date"`
	Annotator           string   `json:"annotator"`
	Database            string   `json:"database"`
	Record              string   `json:"record"`
	ConclusionThesaurus string   `json:"conclusionThesaurus"`
	Conclusions         []string `json:"conclusions"`
	Comment             string   `json:"comment"`
}

// MarshalIndent 两空格缩进的 UTF-8 JSON，不转义非 ASCII 字符与 HTML 符号，末尾无换行
func (d *AnnotationDocument) MarshalIndent() ([]byte, error) {
	doc := *d
	if doc.Conclusions == nil {
		doc.Conclusions = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
