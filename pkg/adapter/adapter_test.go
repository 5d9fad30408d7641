package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAtlas/pkg/model"
)

// flakyAdapter 前 failures 次返回错误，之后成功
type flakyAdapter struct {
	failures int
	calls    int
}

func (f *flakyAdapter) Name() string { return "flaky" }

func (f *flakyAdapter) Fetch(ctx context.Context) ([]model.RawEntity, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("临时故障")
	}
	return []model.RawEntity{{Kind: model.KindStock, Source: "flaky", Code: "600000"}}, nil
}

func TestRunnerRetriesThenSucceeds(t *testing.T) {
	runner := NewRunner(time.Second, 2, time.Millisecond)
	src := &flakyAdapter{failures: 2}

	records, err := runner.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 3, src.calls)
}

func TestRunnerExhaustsRetries(t *testing.T) {
	runner := NewRunner(time.Second, 1, time.Millisecond)
	src := &flakyAdapter{failures: 10}

	_, err := runner.Run(context.Background(), src)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "flaky", fetchErr.Source)
	assert.Equal(t, 2, src.calls)
}

func TestRunnerRespectsCancelledContext(t *testing.T) {
	runner := NewRunner(time.Second, 3, time.Hour)
	src := &flakyAdapter{failures: 10}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := runner.Run(ctx, src)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEastmoneyFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/stock_zh_a_spot_em", r.URL.Path)
		w.Write([]byte(`[
			{"代码": "000001", "名称": "平安银行"},
			{"代码": "600519", "名称": "贵州茅台"},
			{"名称": "缺代码的行"}
		]`))
	}))
	defer server.Close()

	src := NewEastmoneySpotAdapter("eastmoney", server.URL)
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, model.KindStock, records[0].Kind)
	assert.Equal(t, "000001", records[0].Code)
	assert.Equal(t, "平安银行", records[0].DisplayName)
	assert.Equal(t, "eastmoney", records[0].Source)
}

// 数值型代码补前导零，不能丢失前导零串成别的自然键
func TestEastmoneyFetchNumericCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"代码": 1, "名称": "平安银行"},
			{"代码": 600519, "名称": "贵州茅台"},
			{"代码": true, "名称": "非法代码的行"}
		]`))
	}))
	defer server.Close()

	src := NewEastmoneySpotAdapter("eastmoney", server.URL)
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "000001", records[0].Code)
	assert.Equal(t, "600519", records[1].Code)
}

func TestEastmoneyFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := NewEastmoneySpotAdapter("eastmoney", server.URL)
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestClsNewsFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "hs-1", "title": "重大政策出台", "content": "利好银行", "type": "policy", "date": "2026-08-28 09:30:00"},
			{"title": "无标识的新闻", "abstract": "摘要兜底", "type": "快讯"}
		]`))
	}))
	defer server.Close()

	src := NewClsNewsAdapter("cls", server.URL)
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, model.KindHotspot, first.Kind)
	assert.Equal(t, "hs-1", first.Code)
	assert.Equal(t, model.HotspotPolicy, first.HotspotType)
	assert.Equal(t,
		time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC),
		first.PublishTime)

	second := records[1]
	// 来源没给标识时兜底生成，避免整条被判无效
	assert.NotEmpty(t, second.Code)
	assert.Equal(t, model.HotspotNews, second.HotspotType)
	assert.Equal(t, "摘要兜底", second.Content)
}

func TestCSVSnapshotFetch(t *testing.T) {
	content := "code,name,market\n000001.SZ,平安银行,main\n600519.SH,贵州茅台\nbad-line\n"
	path := filepath.Join(t.TempDir(), "stocks.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src := NewCSVSnapshotAdapter("csv", path)
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "000001.SZ", records[0].Code)
	assert.Equal(t, model.MarketMain, records[0].Market)
	assert.Equal(t, "贵州茅台", records[1].DisplayName)
	assert.Empty(t, records[1].Market)
}

func TestCSVSnapshotMissingFile(t *testing.T) {
	src := NewCSVSnapshotAdapter("csv", "/不存在的路径/stocks.csv")
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestStaticListFetch(t *testing.T) {
	src := NewStaticListAdapter("static", []StaticStock{
		{Code: "000001", Name: "平安银行", Market: model.MarketMain},
	})

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Validated)
	assert.Equal(t, "static", records[0].Source)
}
