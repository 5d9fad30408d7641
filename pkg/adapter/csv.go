// pkg/adapter/csv.go
package adapter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"StockAtlas/pkg/model"
)

// CSVSnapshotAdapter 本地 CSV 快照适配器，列依次为 code,name,market。
// 首行是表头时自动跳过。
type CSVSnapshotAdapter struct {
	name string
	path string
}

// NewCSVSnapshotAdapter 创建 CSV 快照适配器
func NewCSVSnapshotAdapter(name, path string) *CSVSnapshotAdapter {
	if name == "" {
		name = "csv"
	}
	return &CSVSnapshotAdapter{name: name, path: path}
}

// Name 返回来源名
func (a *CSVSnapshotAdapter) Name() string { return a.name }

// Fetch 读取快照文件。单行列数不足时跳过该行。
func (a *CSVSnapshotAdapter) Fetch(ctx context.Context) ([]model.RawEntity, error) {
	file, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("打开快照文件失败: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	now := time.Now()
	var records []model.RawEntity
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取快照文件失败: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == "code" {
				continue
			}
		}
		if len(row) < 2 {
			continue
		}

		record := model.RawEntity{
			Kind:        model.KindStock,
			Source:      a.name,
			Code:        row[0],
			DisplayName: row[1],
			ObservedAt:  now,
		}
		if len(row) > 2 {
			record.Market = model.Market(row[2])
		}
		records = append(records, record)
	}
	return records, nil
}
