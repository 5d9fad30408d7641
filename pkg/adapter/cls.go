// pkg/adapter/cls.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"StockAtlas/pkg/model"
)

// crawlerNews 爬虫侧的新闻负载格式
type crawlerNews struct {
	Title      string  `json:"title"`
	Abstract   string  `json:"abstract"`
	Date       string  `json:"date"`
	Link       string  `json:"link"`
	Content    string  `json:"content"`
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	ReadNumber float64 `json:"read_number"`
}

// ClsNewsAdapter 财联社新闻适配器，上游是爬虫网关的 JSON 接口
type ClsNewsAdapter struct {
	name       string
	baseURL    string
	apiPath    string
	httpClient *http.Client
}

// NewClsNewsAdapter 创建新闻适配器
func NewClsNewsAdapter(name, baseURL string) *ClsNewsAdapter {
	if name == "" {
		name = "cls"
	}
	return &ClsNewsAdapter{
		name:    name,
		baseURL: baseURL,
		apiPath: "/api/news/latest",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Name 返回来源名
func (a *ClsNewsAdapter) Name() string { return a.name }

// Fetch 拉取最新新闻列表并转成热点原始记录
func (a *ClsNewsAdapter) Fetch(ctx context.Context) ([]model.RawEntity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+a.apiPath, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求新闻列表失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("新闻接口返回状态码 %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var items []crawlerNews
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("解析新闻列表失败: %w", err)
	}

	now := time.Now()
	records := make([]model.RawEntity, 0, len(items))
	for _, item := range items {
		records = append(records, newsToRaw(a.name, item, now))
	}
	return records, nil
}

// newsToRaw 把一条爬虫新闻转成热点原始记录
func newsToRaw(source string, item crawlerNews, observedAt time.Time) model.RawEntity {
	id := item.ID
	if id == "" {
		// 来源没有事件标识时补一个，避免整条记录被判无效
		id = uuid.New().String()
	}

	publishTime, err := time.Parse("2006-01-02 15:04:05", item.Date)
	if err != nil {
		publishTime = observedAt
	}

	content := item.Content
	if content == "" {
		content = item.Abstract
	}

	return model.RawEntity{
		Kind:        model.KindHotspot,
		Source:      source,
		Code:        id,
		Title:       item.Title,
		Content:     content,
		HotspotType: hotspotTypeOf(item.Type),
		PublishTime: publishTime,
		ObservedAt:  observedAt,
	}
}

// hotspotTypeOf 把爬虫侧的类型字段映射为热点类型，未知取 news
func hotspotTypeOf(raw string) model.HotspotType {
	switch raw {
	case "policy", "政策":
		return model.HotspotPolicy
	case "industry", "行业":
		return model.HotspotIndustry
	case "market", "市场":
		return model.HotspotMarket
	default:
		return model.HotspotNews
	}
}
