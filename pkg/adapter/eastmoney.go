// pkg/adapter/eastmoney.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"StockAtlas/pkg/model"
)

// EastmoneySpotAdapter 东方财富风格的股票列表适配器。
// 上游是 AKShare 网关暴露的 JSON 接口，列名是中文键。
type EastmoneySpotAdapter struct {
	name       string
	baseURL    string
	apiPath    string
	httpClient *http.Client
}

// NewEastmoneySpotAdapter 创建股票列表适配器
func NewEastmoneySpotAdapter(name, baseURL string) *EastmoneySpotAdapter {
	if name == "" {
		name = "eastmoney"
	}
	return &EastmoneySpotAdapter{
		name:    name,
		baseURL: baseURL,
		apiPath: "/api/public/stock_zh_a_spot_em",
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Name 返回来源名
func (a *EastmoneySpotAdapter) Name() string { return a.name }

// Fetch 拉取A股现货列表并转成原始记录。单行解析失败跳过该行，
// 不影响其余行。
func (a *EastmoneySpotAdapter) Fetch(ctx context.Context) ([]model.RawEntity, error) {
	apiURL := a.baseURL + a.apiPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求股票列表失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("股票列表接口返回状态码 %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("解析股票列表失败: %w", err)
	}

	now := time.Now()
	records := make([]model.RawEntity, 0, len(rows))
	for _, row := range rows {
		code := codeValue(row["代码"])
		name := stringValue(row["名称"])
		if code == "" {
			// 无代码的行无法构成自然键，跳过
			continue
		}
		records = append(records, model.RawEntity{
			Kind:        model.KindStock,
			Source:      a.name,
			Code:        code,
			DisplayName: name,
			ObservedAt:  now,
		})
	}
	return records, nil
}

// codeValue 把代码单元格转成字符串。代码会成为自然键，
// 数值型代码补足 6 位前导零，其他类型一律判无效。
func codeValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%06.0f", value)
	default:
		return ""
	}
}

// stringValue 把接口类型的单元格转成字符串
func stringValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.0f", value)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}
