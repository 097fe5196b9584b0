package transformer

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"ptbxl-annotator/internal/models"
	"ptbxl-annotator/internal/repository"
)

// EctopicBeat extra_beats 中的一个条目
type EctopicBeat struct {
	Code     string // 字典编码；带数量但没有编码时为 ES
	Count    int64
	HasCount bool
}

// ParseEctopicBeats 解析 extra_beats 自由文本，例如 "3es, vt" 或 "ves;svarr"
//
// - 按 ';' 或 ',' 拆分，去掉首尾空白，空条目忽略
// - 以数字开头（任意文字的十进制数字）：数字为数量，剩余部分为编码（为空时使用 ES）
// - 不以数字开头：删除所有数字后作为编码
// - 数量超出 int64 范围的条目忽略
func ParseEctopicBeats(text string) []EctopicBeat {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == ','
	})

	beats := make([]EctopicBeat, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		digits := leadingDigits(part)
		if digits == "" {
			code := strings.TrimSpace(strings.Map(func(r rune) rune {
				if unicode.IsDigit(r) {
					return -1
				}
				return r
			}, part))
			if code == "" {
				continue
			}
			beats = append(beats, EctopicBeat{Code: code})
			continue
		}

		count, ok := parseCount(digits)
		if !ok {
			continue
		}
		code := strings.TrimSpace(part[len(digits):])
		if code == "" {
			code = models.CodeDefaultExtraBeat
		}
		beats = append(beats, EctopicBeat{Code: code, Count: count, HasCount: true})
	}
	return beats
}

// leadingDigits 开头的连续十进制数字（任意文字的 Unicode 数字，如 "١٢"）
func leadingDigits(s string) string {
	for i, r := range s {
		if !unicode.IsDigit(r) {
			return s[:i]
		}
	}
	return s
}

// parseCount 将 Unicode 十进制数字串转换为 int64，溢出时返回 false
func parseCount(digits string) (int64, bool) {
	var n int64
	for _, r := range digits {
		d := int64(digitValue(r))
		if n > (math.MaxInt64-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}

// digitValue Unicode 十进制数字的值
// Nd 类字符总是按 0..9 连续排列，向前找到本组起点即可得到数值。
func digitValue(r rune) int {
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10
}

// Lines 按数量格式化字典文本："<文本>: <数量>"
func (b EctopicBeat) Lines(phrase models.Phrase) models.Phrase {
	if !b.HasCount {
		return phrase
	}
	suffix := ": " + strconv.FormatInt(b.Count, 10)
	return phrase.MapLines(func(_ int, line string) string {
		return line + suffix
	})
}

func (s *CommentSynthesizer) appendEctopicBeats(text *models.BilingualText, rec *models.Record) {
	if rec.ExtraBeats == "" {
		return
	}
	for _, beat := range ParseEctopicBeats(rec.ExtraBeats) {
		phrase, ok := repository.LookupFold(s.dict, beat.Code)
		if !ok {
			s.miss(rec, MissBeat, beat.Code)
			continue
		}
		text.Append(beat.Lines(phrase))
	}
}
