package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SCPCode 一条 SCP 诊断编码及其置信度
type SCPCode struct {
	Code       string
	Confidence float64
}

// SCPCodes 保持原始顺序的 SCP 编码映射
type SCPCodes []SCPCode

// ParseSCPCodes 解析 scp_codes 列，例如 {'NORM': 100.0, 'SR': 0.0}
//
// 单引号先替换为双引号，再按 JSON 对象逐个 token 读取，以保留键的出现顺序。
// 重复的键保留第一次出现的位置、使用最后一次出现的值。
func ParseSCPCodes(text string) (SCPCodes, error) {
	dec := json.NewDecoder(strings.NewReader(strings.ReplaceAll(text, "'", `"`)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening brace: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	codes := SCPCodes{}
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read code: %w", err)
		}
		code, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected code string, got %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read confidence of %s: %w", code, err)
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return nil, fmt.Errorf("confidence of %s is not a number: %v", code, valTok)
		}
		confidence, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("confidence of %s: %w", code, err)
		}

		if i, seen := index[code]; seen {
			codes[i].Confidence = confidence
			continue
		}
		index[code] = len(codes)
		codes = append(codes, SCPCode{Code: code, Confidence: confidence})
	}

	if tok, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read closing brace: %w", err)
	} else if d, ok := tok.(json.Delim); !ok || d != '}' {
		return nil, fmt.Errorf("expected closing brace, got %v", tok)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after object")
	}
	return codes, nil
}

// Has 判断编码是否存在
func (c SCPCodes) Has(code string) bool {
	for _, sc := range c {
		if sc.Code == code {
			return true
		}
	}
	return false
}

// Codes 按顺序返回全部编码
func (c SCPCodes) Codes() []string {
	out := make([]string, len(c))
	for i, sc := range c {
		out[i] = sc.Code
	}
	return out
}

// WithPacemaker 合并 pacemaker 列与 scp_codes 两个来源
//
// scp_codes 中没有 PACE 且 pacemaker 列等于 "ja, pacemaker" 时，
// 返回末尾追加 PACE（置信度 0.0）的新切片；其余情况原样返回。接收者不会被修改。
func (c SCPCodes) WithPacemaker(indicator string) SCPCodes {
	if c.Has(CodePacemaker) || strings.TrimSpace(indicator) != PacemakerPresent {
		return c
	}
	out := make(SCPCodes, len(c), len(c)+1)
	copy(out, c)
	return append(out, SCPCode{Code: CodePacemaker, Confidence: 0.0})
}
