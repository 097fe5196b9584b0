// Package transformer 将注释表中的一条记录转换为双语临床注释文本
//
// 转换内容：
// - 心电轴：按编码查字典，缺失时使用 UNK
// - 诊断编码：按 scp_codes 原始顺序查字典；MI 类编码加上梗死分期
// - 起搏器：pacemaker 列与 scp_codes 合并（缺少 PACE 时补上）
// - 早搏：解析 extra_beats 自由文本，带数量的条目输出 "<文本>: <数量>"
//
// 字典中查不到的编码一律跳过，不会报错。
package transformer

import (
	"strings"
	"unicode/utf8"

	"ptbxl-annotator/internal/models"
	"ptbxl-annotator/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 查询未命中的类别
const (
	MissAxis  = "axis"
	MissSCP   = "scp"
	MissStage = "stage"
	MissBeat  = "beat"
)

// CommentHeaders 注释文本每种语言的标题行
var CommentHeaders = [models.LanguageCount]string{"Аннотация PTB-XL:", "PTB-XL annotation:"}

// commentLanguages 与 CommentHeaders 顺序一致，用于按语言规则转小写
var commentLanguages = [models.LanguageCount]language.Tag{language.Russian, language.English}

// MissObserver 记录字典查询未命中（由指标模块实现）
type MissObserver interface {
	LookupMiss(kind string)
}

// CommentSynthesizer 注释文本生成器
// 只读取字典，不持有可变状态，可被多个 goroutine 同时使用。
type CommentSynthesizer struct {
	dict     repository.Dictionary
	observer MissObserver
	logger   *zap.Logger
}

// NewCommentSynthesizer 创建注释文本生成器；observer 可以为 nil
func NewCommentSynthesizer(dict repository.Dictionary, observer MissObserver, logger *zap.Logger) *CommentSynthesizer {
	return &CommentSynthesizer{
		dict:     dict,
		observer: observer,
		logger:   logger,
	}
}

// Synthesize 生成一条记录的注释文本：俄语块、空行、英语块
func (s *CommentSynthesizer) Synthesize(rec *models.Record) string {
	text := models.NewBilingualText(CommentHeaders)

	s.appendAxis(text, rec)
	s.appendDiagnoses(text, rec)
	s.appendEctopicBeats(text, rec)

	return text.Render()
}

func (s *CommentSynthesizer) appendAxis(text *models.BilingualText, rec *models.Record) {
	code := rec.HeartAxis
	if code == "" {
		code = models.CodeUnknownAxis
	}
	phrase, ok := s.dict.Lookup(code)
	if !ok {
		s.miss(rec, MissAxis, code)
		return
	}
	text.Append(phrase)
}

func (s *CommentSynthesizer) appendDiagnoses(text *models.BilingualText, rec *models.Record) {
	for _, sc := range rec.SCPCodes.WithPacemaker(rec.Pacemaker) {
		phrase, ok := s.dict.Lookup(sc.Code)
		if !ok {
			s.miss(rec, MissSCP, sc.Code)
			continue
		}
		if strings.HasSuffix(sc.Code, models.SuffixInfarction) {
			phrase = s.withInfarctionStage(rec, phrase)
		}
		text.Append(phrase)
	}
}

// withInfarctionStage 在 MI 文本前加上分期形容词，例如
// "Острый" + "Инфаркт миокарда" → "Острый инфаркт миокарда"。
// 只修改每种语言的第一行；没有有效分期或分期不在字典中时原样返回。
func (s *CommentSynthesizer) withInfarctionStage(rec *models.Record, phrase models.Phrase) models.Phrase {
	stageCode, ok := rec.InfarctionStage()
	if !ok {
		return phrase
	}
	stage, ok := s.dict.Lookup(stageCode)
	if ok {
		stage, ok = stage.Aligned()
	}
	if !ok {
		s.miss(rec, MissStage, stageCode)
		return phrase
	}

	var out models.Phrase
	for lang, lines := range phrase {
		out[lang] = append([]string(nil), lines...)
		if len(out[lang]) == 0 || len(stage[lang]) == 0 {
			continue
		}
		out[lang][0] = prefixStage(stage[lang][0], out[lang][0], commentLanguages[lang])
	}
	return out
}

// prefixStage 拼接分期与诊断文本，诊断文本首字母按语言规则转小写
func prefixStage(stage, phrase string, tag language.Tag) string {
	if phrase == "" {
		return stage
	}
	_, size := utf8.DecodeRuneInString(phrase)
	return stage + " " + cases.Lower(tag).String(phrase[:size]) + phrase[size:]
}

func (s *CommentSynthesizer) miss(rec *models.Record, kind, code string) {
	if s.observer != nil {
		s.observer.LookupMiss(kind)
	}
	s.logger.Debug("Dictionary lookup miss",
		zap.Int("ecg_id", rec.ECGID),
		zap.String("kind", kind),
		zap.String("code", code),
	)
}
