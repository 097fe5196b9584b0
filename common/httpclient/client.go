// Package httpclient 下载 http/https 远程输入（注释表、编码字典）
package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ptbxl-annotator/common/config"

	"github.com/go-resty/resty/v2"
)

// MaxBodySize 远程文件大小上限（100MB）
const MaxBodySize = 100 * 1024 * 1024

// NewClient 创建下载客户端
func NewClient(cfg *config.HTTPConfig) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)
}

// IsURL 判断输入是否为 http/https 地址
func IsURL(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch 下载远程文件内容
func Fetch(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("download %s failed with status %d", url, resp.StatusCode())
	}
	if len(resp.Body()) > MaxBodySize {
		return nil, fmt.Errorf("download %s exceeds %d bytes", url, MaxBodySize)
	}
	return resp.Body(), nil
}
