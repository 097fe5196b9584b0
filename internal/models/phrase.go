package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LanguageCount 注释语言数量（0 = 俄语，1 = 英语）
const LanguageCount = 2

// Phrase 字典中一个编码对应的双语文本，每种语言可以有多行
type Phrase [LanguageCount][]string

// UnmarshalJSON 接受 ["俄语", "英语"]、[["行1", "行2"], ["line1", "line2"]] 以及两者混合
func (p *Phrase) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrDictionaryEntry, err)
	}
	if len(parts) != LanguageCount {
		return fmt.Errorf("%w: expected %d languages, got %d", ErrDictionaryEntry, LanguageCount, len(parts))
	}

	var out Phrase
	for i, part := range parts {
		if string(bytes.TrimSpace(part)) == "null" {
			return fmt.Errorf("%w: language %d is null", ErrDictionaryEntry, i)
		}
		var line string
		if err := json.Unmarshal(part, &line); err == nil {
			out[i] = []string{line}
			continue
		}
		var lines []string
		if err := json.Unmarshal(part, &lines); err != nil {
			return fmt.Errorf("%w: language %d is neither a string nor a list of strings", ErrDictionaryEntry, i)
		}
		out[i] = lines
	}

	aligned, ok := out.Aligned()
	if !ok {
		return fmt.Errorf("%w: every language needs at least one non-empty line", ErrDictionaryEntry)
	}
	*p = aligned
	return nil
}

// alignSeparator 较长一侧多出的行并入最后一个对齐行时使用的分隔符
const alignSeparator = "; "

// Aligned 返回两种语言行数相同、且不含空白行的 Phrase
//
// 含换行的字符串按行拆开，空白行去掉；行数较多的一侧把多出的行并入它的第 N 行（N 为较少一侧的行数），
// 例如 [["A", "B"], ["X"]] → [["A; B"], ["X"]]。任一语言没有文本时返回 false。
func (p Phrase) Aligned() (Phrase, bool) {
	var out Phrase
	width := 0
	for lang, lines := range p {
		for _, line := range lines {
			for _, l := range strings.Split(line, "\n") {
				l = strings.TrimRight(l, "\r")
				if strings.TrimSpace(l) != "" {
					out[lang] = append(out[lang], l)
				}
			}
		}
		if len(out[lang]) == 0 {
			return Phrase{}, false
		}
		if width == 0 || len(out[lang]) < width {
			width = len(out[lang])
		}
	}

	for lang, lines := range out {
		if len(lines) == width {
			continue
		}
		merged := make([]string, width)
		copy(merged, lines[:width-1])
		merged[width-1] = strings.Join(lines[width-1:], alignSeparator)
		out[lang] = merged
	}
	return out, true
}

// MapLines 对每种语言的每一行应用 fn，返回新的 Phrase
func (p Phrase) MapLines(fn func(lang int, line string) string) Phrase {
	var out Phrase
	for lang, lines := range p {
		mapped := make([]string, len(lines))
		for i, line := range lines {
			mapped[i] = fn(lang, line)
		}
		out[lang] = mapped
	}
	return out
}

// BilingualText 按语言分轨、逐步追加的注释文本
// 每次追加后两条轨道的行数始终相等，且不含空行（空行只出现在两个语言块之间）。
type BilingualText struct {
	lines [LanguageCount][]string
}

// NewBilingualText 以每种语言的标题行初始化
func NewBilingualText(headers [LanguageCount]string) *BilingualText {
	t := &BilingualText{}
	for lang, header := range headers {
		t.lines[lang] = []string{header}
	}
	return t
}

// Append 追加一个 Phrase（先按 Aligned 对齐）
// 任一语言没有文本的 Phrase 被忽略。
func (t *BilingualText) Append(p Phrase) {
	aligned, ok := p.Aligned()
	if !ok {
		return
	}
	for lang, lines := range aligned {
		t.lines[lang] = append(t.lines[lang], lines...)
	}
}

// Lines 返回某种语言当前的全部行（副本）
func (t *BilingualText) Lines(lang int) []string {
	out := make([]string, len(t.lines[lang]))
	copy(out, t.lines[lang])
	return out
}

// Len 每条轨道的行数
func (t *BilingualText) Len() int {
	return len(t.lines[0])
}

// Render 每种语言按行拼接，语言块之间空一行
func (t *BilingualText) Render() string {
	blocks := make([]string, LanguageCount)
	for lang, lines := range t.lines {
		blocks[lang] = strings.Join(lines, "\n")
	}
	return strings.Join(blocks, "\n\n")
}
