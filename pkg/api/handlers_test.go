package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAtlas/pkg/adapter"
	"StockAtlas/pkg/aggregator"
	"StockAtlas/pkg/classifier"
	"StockAtlas/pkg/config"
	"StockAtlas/pkg/model"
	"StockAtlas/pkg/pipeline"
	"StockAtlas/pkg/scorer"
	"StockAtlas/pkg/store"
)

type fixedAdapter struct {
	records []model.RawEntity
}

func (f *fixedAdapter) Name() string { return "static" }

func (f *fixedAdapter) Fetch(ctx context.Context) ([]model.RawEntity, error) {
	return f.records, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore(nil)
	ruleSet := config.DefaultRuleSet()
	runner := adapter.NewRunner(time.Second, 0, time.Millisecond)
	src := &fixedAdapter{records: []model.RawEntity{
		{Kind: model.KindStock, Source: "static", Code: "000001.SZ", DisplayName: "平安银行", ObservedAt: time.Now(), Validated: true},
	}}
	pl := pipeline.New(
		[]adapter.SourceAdapter{src},
		runner,
		classifier.New(ruleSet.Classification, ruleSet.Vocabulary),
		scorer.New(ruleSet.Lexicon),
		st,
		2,
	)
	agg := aggregator.New(st, 10)

	router := gin.New()
	server := &Server{router: router}
	server.SetupRoutes(NewHandlers(st, agg, pl, ruleSet))
	return router, st
}

func seedStock(t *testing.T, st store.Store) {
	t.Helper()
	industry := "BK0475"
	name := "银行"
	_, err := st.UpsertStock(context.Background(), &model.StockEntity{
		Meta: model.Meta{
			NaturalKey: "000001",
			Source:     "eastmoney",
			Confidence: 0.8,
			ObservedAt: time.Now(),
		},
		Code:          "000001.SZ",
		Name:          "平安银行",
		Market:        model.MarketMain,
		IndustryCode:  &industry,
		IndustryName:  &name,
		MappingStatus: model.MappingAutoMapped,
	})
	require.NoError(t, err)
}

// gin.Default 已带 Logger 和 Recovery，构造服务器不应再叠加中间件
func TestNewServerMiddlewareNotDuplicated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := NewServer("8080")

	assert.Len(t, server.router.Handlers, 2)
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetStockByKey(t *testing.T) {
	router, st := newTestRouter(t)
	seedStock(t, st)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stocks/000001", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data model.StockEntity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "平安银行", body.Data.Name)
	assert.Equal(t, 0.8, body.Data.Confidence)
}

func TestGetStockNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stocks/999999", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListStocksPagination(t *testing.T) {
	router, st := newTestRouter(t)
	seedStock(t, st)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/stocks?mapping_status=auto_mapped&sort_by=confidence&sort_order=desc&page=1&page_size=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data  []model.StockEntity `json:"data"`
		Total int64               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Total)
	require.Len(t, body.Data, 1)
}

func TestConfirmMapping(t *testing.T) {
	router, st := newTestRouter(t)
	seedStock(t, st)

	payload := strings.NewReader(`{"industry_code": "BK0473"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/stocks/000001/mapping", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	stored, err := st.GetStock(context.Background(), "000001")
	require.NoError(t, err)
	require.NotNil(t, stored.IndustryCode)
	assert.Equal(t, "BK0473", *stored.IndustryCode)
	assert.Equal(t, 1.0, stored.Confidence)
	assert.Equal(t, model.MappingConfirmed, stored.MappingStatus)
}

func TestConfirmMappingMissingBody(t *testing.T) {
	router, st := newTestRouter(t)
	seedStock(t, st)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/stocks/000001/mapping", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunPipelineEndpoint(t *testing.T) {
	router, st := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/pipeline/run", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data pipeline.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Collected)
	assert.Equal(t, 1, body.Data.Saved)

	stored, err := st.GetStock(context.Background(), "000001")
	require.NoError(t, err)
	assert.Equal(t, 1.0, stored.Confidence)
}

func TestStatisticsEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	seedStock(t, st)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data aggregator.Statistics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Data.StockTotal)
}
