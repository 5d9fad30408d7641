// pkg/adapter/nats.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/stan.go"

	"StockAtlas/pkg/model"
)

// NatsNewsAdapter 从 NATS Streaming 主题批量排空爬虫新闻的热点适配器。
// 每次 Fetch 建立一个订阅，从上次确认的位置继续消费，
// 消息间隔超过 idleGap 视为本批排空，返回已收到的记录。
type NatsNewsAdapter struct {
	name    string
	conn    stan.Conn
	subject string
	durable string
	idleGap time.Duration
}

// NewNatsNewsAdapter 连接 NATS Streaming 并创建适配器
func NewNatsNewsAdapter(name, natsURL, clusterID, clientID, subject string) (*NatsNewsAdapter, error) {
	if name == "" {
		name = "cls"
	}
	conn, err := stan.Connect(clusterID, clientID, stan.NatsURL(natsURL))
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}
	return &NatsNewsAdapter{
		name:    name,
		conn:    conn,
		subject: subject,
		durable: clientID + "-" + subject,
		idleGap: 2 * time.Second,
	}, nil
}

// Name 返回来源名
func (a *NatsNewsAdapter) Name() string { return a.name }

// Fetch 排空当前积压的新闻消息
func (a *NatsNewsAdapter) Fetch(ctx context.Context) ([]model.RawEntity, error) {
	msgChan := make(chan *stan.Msg, 256)
	sub, err := a.conn.Subscribe(
		a.subject,
		func(msg *stan.Msg) {
			select {
			case msgChan <- msg:
			default:
				log.Printf("警告: 新闻消息缓冲已满，丢弃一条消息")
			}
		},
		stan.DurableName(a.durable),
		stan.SetManualAckMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("订阅新闻主题失败: %w", err)
	}
	defer sub.Close()

	now := time.Now()
	var records []model.RawEntity
	idle := time.NewTimer(a.idleGap)
	defer idle.Stop()

	for {
		select {
		case msg := <-msgChan:
			var item crawlerNews
			if err := json.Unmarshal(msg.Data, &item); err != nil {
				log.Printf("解析新闻消息失败: %v", err)
				msg.Ack()
				continue
			}
			records = append(records, newsToRaw(a.name, item, now))
			msg.Ack()

			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(a.idleGap)
		case <-idle.C:
			return records, nil
		case <-ctx.Done():
			// 超时前收到的消息照常返回，部分结果是常态
			return records, nil
		}
	}
}

// Close 断开 NATS 连接
func (a *NatsNewsAdapter) Close() error {
	return a.conn.Close()
}
