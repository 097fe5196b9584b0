package models

// 注释表列名
const (
	ColumnECGID              = "ecg_id"
	ColumnSCPCodes           = "scp_codes"
	ColumnInfarctionStadium1 = "infarction_stadium1"
	ColumnInfarctionStadium2 = "infarction_stadium2"
	ColumnHeartAxis          = "heart_axis"
	ColumnExtraBeats         = "extra_beats"
	ColumnPacemaker          = "pacemaker"
)

// 编码与哨兵值
const (
	CodePacemaker        = "PACE"          // 起搏器 SCP 编码
	CodeUnknownAxis      = "UNK"           // 心电轴缺失时使用的编码
	CodeDefaultExtraBeat = "ES"            // 只有数量、没有类型时的早搏编码
	SuffixInfarction     = "MI"            // 心肌梗死类 SCP 编码的后缀
	StageUnknown         = "unknown"       // 梗死分期列的"未知"值
	PacemakerPresent     = "ja, pacemaker" // pacemaker 列表示"有起搏器"的取值
)

// InfarctionStageColumns 梗死分期列，按优先级排列
var InfarctionStageColumns = [2]string{ColumnInfarctionStadium1, ColumnInfarctionStadium2}

// 注释文档固定字段
const (
	AnnotationVersion   = 1
	AnnotationType      = "STANDARD"
	AnnotatorName       = "PTB-XL annotators"
	DatabaseName        = "PTB-XL ECG Dataset"
	ConclusionThesaurus = DatabaseName
	RecordNameSuffix    = "_hr"
)
