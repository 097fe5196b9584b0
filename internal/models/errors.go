package models

import (
	"errors"
	"fmt"
)

// ErrDictionaryEntry 字典条目格式错误
var ErrDictionaryEntry = errors.New("invalid dictionary entry")

// RowError 注释表某一行的字段错误
type RowError struct {
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("column %s value %q: %v", e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// SCPCodesError scp_codes 字段无法解析（整批处理应当中止）
type SCPCodesError struct {
	ECGID int
	Raw   string
	Err   error
}

func (e *SCPCodesError) Error() string {
	return fmt.Sprintf("ecg_id %d: malformed scp_codes %q: %v", e.ECGID, e.Raw, e.Err)
}

func (e *SCPCodesError) Unwrap() error {
	return e.Err
}
