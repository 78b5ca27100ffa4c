package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Handler 事件处理函数
//
// 返回错误或超时只记录日志，不影响其他处理函数。
type Handler func(ctx context.Context, event Event) error

// 默认配置
const (
	DefaultHistoryCapacity = 10000
	DefaultHandlerTimeout  = 5 * time.Second
)

// ═══════════════════════════════════════════════════════════════════════════
// Bus 事件总线
// ═══════════════════════════════════════════════════════════════════════════

// Bus 进程内事件总线
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	history  []Event

	historyCapacity int
	handlerTimeout  time.Duration
	logger          *slog.Logger

	published int64
	processed int64
	byType    map[EventType]int64
}

// Option Bus 配置选项
type Option func(*Bus)

// WithHistoryCapacity 设置历史容量，超出时丢弃最旧的事件
func WithHistoryCapacity(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.historyCapacity = n
		}
	}
}

// WithHandlerTimeout 设置单个处理函数的超时
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New 创建事件总线
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers:        make(map[EventType][]Handler),
		historyCapacity: DefaultHistoryCapacity,
		handlerTimeout:  DefaultHandlerTimeout,
		logger:          slog.Default(),
		byType:          make(map[EventType]int64),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ═══════════════════════════════════════════════════════════════════════════
// 订阅
// ═══════════════════════════════════════════════════════════════════════════

// Subscribe 订阅指定类型的事件
//
// 同一处理函数可重复订阅，会被重复调用。
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Unsubscribe 取消订阅，按函数标识移除第一个匹配项
//
// 返回是否找到并移除。
func (b *Bus) Unsubscribe(eventType EventType, handler Handler) bool {
	if handler == nil {
		return false
	}
	target := reflect.ValueOf(handler).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[eventType]
	for i, h := range list {
		if reflect.ValueOf(h).Pointer() == target {
			b.handlers[eventType] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// SubscriberCount 指定类型的订阅者数量
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// ═══════════════════════════════════════════════════════════════════════════
// 发布
// ═══════════════════════════════════════════════════════════════════════════

// Publish 发布事件并等待全部处理函数完成
//
// 事件先进入历史（有界，超出丢弃最旧），然后并发执行全部订阅者。
// 单个处理函数的 panic、错误或超时只记录日志。无论处理结果如何，
// 事件都会被标记为已处理。返回发布后的事件副本。
func (b *Bus) Publish(ctx context.Context, event Event) Event {
	event.normalize()

	b.mu.Lock()
	b.history = append(b.history, event)
	if len(b.history) > b.historyCapacity {
		b.history = b.history[len(b.history)-b.historyCapacity:]
	}
	historyIdx := len(b.history) - 1
	b.published++
	b.byType[event.Type]++
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	timeout := b.handlerTimeout
	b.mu.Unlock()

	var wg sync.WaitGroup
	for i, handler := range handlers {
		wg.Add(1)
		go func(idx int, h Handler) {
			defer wg.Done()
			b.runHandler(ctx, idx, h, event, timeout)
		}(i, handler)
	}
	wg.Wait()

	event.Processed = true

	b.mu.Lock()
	b.processed++
	// 历史可能在处理期间被裁剪或清空，按事件 ID 定位
	if historyIdx < len(b.history) && b.history[historyIdx].ID == event.ID {
		b.history[historyIdx].Processed = true
	} else {
		for i := range b.history {
			if b.history[i].ID == event.ID {
				b.history[i].Processed = true
				break
			}
		}
	}
	b.mu.Unlock()

	return event
}

// runHandler 执行单个处理函数，隔离 panic 并施加超时
func (b *Bus) runHandler(ctx context.Context, idx int, handler Handler, event Event, timeout time.Duration) {
	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("handler panic: %v", r)
			}
		}()
		done <- handler(hctx, event)
	}()

	select {
	case err := <-done:
		if err != nil {
			b.logger.Error("event handler failed",
				"event_type", event.Type,
				"event_id", event.ID,
				"handler_index", idx,
				"error", err)
		}
	case <-hctx.Done():
		b.logger.Warn("event handler timed out",
			"event_type", event.Type,
			"event_id", event.ID,
			"handler_index", idx,
			"timeout", timeout)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 历史与统计
// ═══════════════════════════════════════════════════════════════════════════

// HistoryFilter 历史查询条件，零值字段不过滤
type HistoryFilter struct {
	Type   EventType // 事件类型
	Source string    // 来源 Agent ID
	Limit  int       // 最多返回条数，0 表示不限
}

// History 按到达顺序返回匹配的事件副本
//
// Limit 生效时返回最新的 Limit 条。
func (b *Bus) History(filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []Event
	for _, event := range b.history {
		if filter.Type != "" && event.Type != filter.Type {
			continue
		}
		if filter.Source != "" && event.Source != filter.Source {
			continue
		}
		matched = append(matched, event)
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[len(matched)-filter.Limit:]
	}
	return matched
}

// ClearHistory 清空历史，返回清除的条数
func (b *Bus) ClearHistory() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.history)
	b.history = nil
	return n
}

// Statistics 总线统计
type Statistics struct {
	TotalPublished int64               `json:"total_published"`
	TotalProcessed int64               `json:"total_processed"`
	HistorySize    int                 `json:"history_size"`
	ByType         map[EventType]int64 `json:"by_type"`
	Subscribers    map[EventType]int   `json:"subscribers"`
}

// Stats 返回统计快照
func (b *Bus) Stats() Statistics {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := Statistics{
		TotalPublished: b.published,
		TotalProcessed: b.processed,
		HistorySize:    len(b.history),
		ByType:         make(map[EventType]int64, len(b.byType)),
		Subscribers:    make(map[EventType]int, len(b.handlers)),
	}
	for eventType, count := range b.byType {
		stats.ByType[eventType] = count
	}
	for eventType, handlers := range b.handlers {
		stats.Subscribers[eventType] = len(handlers)
	}
	return stats
}
