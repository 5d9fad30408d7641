// pkg/merger/merger.go
package merger

import (
	"time"
)

// Record 参与合并的持久化记录，model.Meta 提供了全部实现
type Record interface {
	Key() string
	ConfidenceValue() float64
	SourceName() string
	ObservedTime() time.Time
}

// Policy 合并策略。合并永远是整条记录的替换或保留，不做字段级拼接，
// 这样对固定的输入多重集合并结果与到达顺序无关。
// 决策顺序：置信度高者胜；打平比较来源优先级；再打平比较采集时间，新者胜。
type Policy struct {
	priority map[string]int // 来源名 -> 序号，越小优先级越高
}

// NewPolicy 按来源优先级顺序创建合并策略，未列出的来源排在最后
func NewPolicy(sourceOrder []string) *Policy {
	priority := make(map[string]int, len(sourceOrder))
	for i, source := range sourceOrder {
		priority[source] = i
	}
	return &Policy{priority: priority}
}

// DefaultPolicy 内置来源优先级
func DefaultPolicy() *Policy {
	return NewPolicy([]string{"wind", "eastmoney", "static", "csv", "cls", "auto"})
}

// Replaces 判断 incoming 是否整条替换 existing。
// existing 为 nil 时 incoming 直接保留。
func (p *Policy) Replaces(existing, incoming Record) bool {
	if existing == nil {
		return true
	}

	if incoming.ConfidenceValue() != existing.ConfidenceValue() {
		return incoming.ConfidenceValue() > existing.ConfidenceValue()
	}

	incomingRank := p.rank(incoming.SourceName())
	existingRank := p.rank(existing.SourceName())
	if incomingRank != existingRank {
		return incomingRank < existingRank
	}

	return incoming.ObservedTime().After(existing.ObservedTime())
}

func (p *Policy) rank(source string) int {
	if r, ok := p.priority[source]; ok {
		return r
	}
	return len(p.priority)
}
