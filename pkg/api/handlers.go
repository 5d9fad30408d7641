package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"StockAtlas/pkg/aggregator"
	"StockAtlas/pkg/config"
	"StockAtlas/pkg/model"
	"StockAtlas/pkg/pipeline"
	"StockAtlas/pkg/store"
)

// Handlers API处理程序
type Handlers struct {
	store      store.Store
	aggregator *aggregator.Aggregator
	pipeline   *pipeline.Pipeline
	ruleSet    *config.RuleSet
}

// NewHandlers 创建新的API处理程序
func NewHandlers(
	st store.Store,
	agg *aggregator.Aggregator,
	pl *pipeline.Pipeline,
	ruleSet *config.RuleSet,
) *Handlers {
	return &Handlers{
		store:      st,
		aggregator: agg,
		pipeline:   pl,
		ruleSet:    ruleSet,
	}
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// ListStocks 股票列表处理程序
func (h *Handlers) ListStocks(c *gin.Context) {
	filter := store.StockFilter{
		Market:        model.Market(c.Query("market")),
		IndustryCode:  c.Query("industry_code"),
		MappingStatus: model.MappingStatus(c.Query("mapping_status")),
		Source:        c.Query("source"),
		Keyword:       c.Query("keyword"),
		SortBy:        c.Query("sort_by"),
		SortOrder:     store.SortOrder(c.DefaultQuery("sort_order", "asc")),
		Page:          intQuery(c, "page", 1),
		PageSize:      intQuery(c, "page_size", 20),
	}

	items, total, err := h.store.ListStocks(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询股票列表失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
	})
}

// GetStock 股票详情处理程序
func (h *Handlers) GetStock(c *gin.Context) {
	entity, err := h.store.GetStock(c.Request.Context(), c.Param("key"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "股票不存在",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询股票失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entity,
	})
}

// ConfirmMappingRequest 人工确认行业映射请求
type ConfirmMappingRequest struct {
	IndustryCode string `json:"industry_code" binding:"required"`
}

// ConfirmMapping 人工确认行业映射处理程序。确认后的记录置信度为 1.0，
// 后续自动映射不会再覆盖它。
func (h *Handlers) ConfirmMapping(c *gin.Context) {
	var req ConfirmMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return
	}

	key := c.Param("key")
	entity, err := h.store.GetStock(c.Request.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "股票不存在",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询股票失败: " + err.Error(),
		})
		return
	}

	code := req.IndustryCode
	entity.IndustryCode = &code
	entity.IndustryName = nil
	if name, ok := h.ruleSet.Classification.IndustryNames[code]; ok {
		entity.IndustryName = &name
	}
	entity.Confidence = 1.0
	entity.MappingStatus = model.MappingConfirmed
	entity.ObservedAt = time.Now()

	if _, err := h.store.UpsertStock(c.Request.Context(), entity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "保存映射失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   entity,
	})
}

// ListHotspots 热点列表处理程序
func (h *Handlers) ListHotspots(c *gin.Context) {
	filter := store.HotspotFilter{
		Type:      model.HotspotType(c.Query("type")),
		Level:     model.HotspotLevel(c.Query("level")),
		Status:    model.HotspotStatus(c.Query("status")),
		Source:    c.Query("source"),
		Keyword:   c.Query("keyword"),
		SortBy:    c.DefaultQuery("sort_by", "publish_time"),
		SortOrder: store.SortOrder(c.DefaultQuery("sort_order", "desc")),
		Page:      intQuery(c, "page", 1),
		PageSize:  intQuery(c, "page_size", 20),
	}

	items, total, err := h.store.ListHotspots(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询热点列表失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
	})
}

// GetHotspot 热点详情处理程序
func (h *Handlers) GetHotspot(c *gin.Context) {
	entity, err := h.store.GetHotspot(c.Request.Context(), c.Param("key"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "热点不存在",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询热点失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entity,
	})
}

// GetStatistics 汇总统计处理程序
func (h *Handlers) GetStatistics(c *gin.Context) {
	stats, err := h.aggregator.Statistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "计算汇总统计失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// RunPipeline 手动触发一轮流水线
func (h *Handlers) RunPipeline(c *gin.Context) {
	report, err := h.pipeline.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "流水线执行失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

// intQuery 解析整型查询参数，非法时取缺省值
func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}
