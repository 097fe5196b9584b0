package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Record 从注释表一行中提取出的类型化字段
type Record struct {
	ECGID            int
	HeartAxis        string    // 缺失时为 UNK
	SCPCodes         SCPCodes  // 原始顺序
	InfarctionStages [2]string // infarction_stadium1/2，空串表示缺失
	ExtraBeats       string    // 早搏自由文本，空串表示缺失
	Pacemaker        string
}

// ParseRecord 将一行原始数据转换为 Record
//
// 心电轴缺失时回退为 UNK；其他可选列缺失按"无此特征"处理。
// ecg_id 缺失或非正整数返回 *RowError；scp_codes 无法解析返回 *SCPCodesError。
func ParseRecord(row Row) (*Record, error) {
	id, err := parseECGID(row)
	if err != nil {
		return nil, err
	}

	rec := &Record{ECGID: id, HeartAxis: CodeUnknownAxis}
	if axis, ok := row.Get(ColumnHeartAxis); ok {
		rec.HeartAxis = axis
	}

	raw, _ := row.Get(ColumnSCPCodes)
	codes, err := ParseSCPCodes(raw)
	if err != nil {
		return nil, &SCPCodesError{ECGID: id, Raw: raw, Err: err}
	}
	rec.SCPCodes = codes

	for i, col := range InfarctionStageColumns {
		rec.InfarctionStages[i], _ = row.Get(col)
	}
	rec.ExtraBeats, _ = row.Get(ColumnExtraBeats)
	rec.Pacemaker, _ = row.Get(ColumnPacemaker)

	return rec, nil
}

// parseECGID 接受整数或整数值的浮点写法（如 "7.0"），范围 1..MaxInt32
func parseECGID(row Row) (int, error) {
	raw, ok := row.Get(ColumnECGID)
	if !ok {
		return 0, &RowError{Column: ColumnECGID, Err: errors.New("missing value")}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, &RowError{Column: ColumnECGID, Value: raw, Err: errors.New("not an integer")}
		}
		if f < 1 || f > math.MaxInt32 {
			return 0, &RowError{Column: ColumnECGID, Value: raw, Err: errors.New("out of range")}
		}
		id = int64(f)
	}
	if id <= 0 {
		return 0, &RowError{Column: ColumnECGID, Value: raw, Err: errors.New("must be positive")}
	}
	if id > math.MaxInt32 {
		return 0, &RowError{Column: ColumnECGID, Value: raw, Err: errors.New("out of range")}
	}
	return int(id), nil
}

// InfarctionStage 按列顺序返回第一个有效的梗死分期编码
func (r *Record) InfarctionStage() (string, bool) {
	for _, stage := range r.InfarctionStages {
		if stage != "" && stage != StageUnknown {
			return stage, true
		}
	}
	return "", false
}

// Name 记录名，例如 00007_hr
func (r *Record) Name() string {
	return RecordName(r.ECGID)
}

// RecordName 由 ecg_id 生成记录名（5 位补零 + "_hr"）
func RecordName(ecgID int) string {
	return fmt.Sprintf("%05d%s", ecgID, RecordNameSuffix)
}
