package consumer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"ptbxl-annotator/common/httpclient"
	"ptbxl-annotator/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// metadataSheets Excel 中需要跳过的说明类工作表
var metadataSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

// TableConsumer 读取注释表（CSV / TSV / XLSX，本地文件或 http/https 地址）
type TableConsumer struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewTableConsumer 创建注释表读取器
func NewTableConsumer(httpClient *resty.Client, logger *zap.Logger) *TableConsumer {
	return &TableConsumer{
		httpClient: httpClient,
		logger:     logger,
	}
}

// ReadRows 读取全部数据行，按表中顺序返回
func (c *TableConsumer) ReadRows(ctx context.Context, source string) ([]models.Row, error) {
	content, err := c.read(ctx, source)
	if err != nil {
		return nil, err
	}

	headers, records, err := ParseTable(source, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	rows := make([]models.Row, 0, len(records))
	for _, record := range records {
		row := make(models.Row, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	c.logger.Info("Annotation table loaded",
		zap.String("source", source),
		zap.Int("columns", len(headers)),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

func (c *TableConsumer) read(ctx context.Context, source string) ([]byte, error) {
	if httpclient.IsURL(source) {
		return httpclient.Fetch(ctx, c.httpClient, source)
	}
	content, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation table %s: %w", source, err)
	}
	return content, nil
}

// ParseTable 按文件扩展名解析表格内容，返回表头和数据行
func ParseTable(name string, content []byte) ([]string, [][]string, error) {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}

	switch {
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
		return parseExcel(content)
	case strings.HasSuffix(lower, ".tsv"):
		return parseCSV(content, '\t')
	default:
		return parseCSV(content, ',')
	}
}

// parseCSV 解析 CSV/TSV，第一行为表头
func parseCSV(content []byte, comma rune) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return splitHeader(all)
}

// parseExcel 解析 XLSX，使用第一个非说明类工作表
func parseExcel(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("no sheets in Excel file")
	}

	sheetName := sheets[len(sheets)-1]
	for _, sheet := range sheets {
		if !metadataSheets[strings.ToLower(sheet)] {
			sheetName = sheet
			break
		}
	}

	all, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Excel rows from %s: %w", sheetName, err)
	}
	return splitHeader(all)
}

func splitHeader(all [][]string) ([]string, [][]string, error) {
	if len(all) == 0 {
		return nil, nil, errors.New("empty table")
	}
	headers := make([]string, len(all[0]))
	for i, h := range all[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, all[1:], nil
}
