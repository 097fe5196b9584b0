package models

import "strings"

// Row 注释表中的一行（列名 → 单元格原始文本）
// 缺失的列与空白单元格等价，都表示"无值"。
type Row map[string]string

// Get 返回去除首尾空白后的单元格内容；ok=false 表示该列缺失或为空
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" || isMissingMarker(v) {
		return "", false
	}
	return v, true
}

// isMissingMarker 导出工具写出的缺失值标记
func isMissingMarker(v string) bool {
	switch v {
	case "nan", "NaN", "NULL", "null", "None":
		return true
	}
	return false
}
