package event

import (
	"sync"

	"github.com/google/uuid"
)

// Topic 事件主题
type Topic string

const (
	// 刷新循环每次拉取完成后发布
	TopicBoxOffice Topic = "box_office"
	TopicTVRatings Topic = "tv_ratings"
)

// Event 代表一次刷新结果
type Event struct {
	Topic   Topic
	Payload any
}

// Handler is called on the publisher's goroutine and must not block.
type Handler func(event Event)

// Bus 事件总线接口
type Bus interface {
	Subscribe(topic Topic, handler Handler) string // 返回 Subscription ID
	Unsubscribe(topic Topic, subID string)
	Publish(topic Topic, payload any)
}

type subscription struct {
	id      string
	handler Handler
}

// InMemoryBus 简单的内存事件总线实现
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[Topic][]subscription
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[Topic][]subscription),
	}
}

func (b *InMemoryBus) Subscribe(topic Topic, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	b.handlers[topic] = append(b.handlers[topic], subscription{id: id, handler: handler})
	return id
}

func (b *InMemoryBus) Unsubscribe(topic Topic, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[topic]
	for i, s := range subs {
		if s.id == subID {
			// 复制一份，避免影响正在遍历旧切片的 Publish
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			b.handlers[topic] = append(next, subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[topic]) == 0 {
		delete(b.handlers, topic)
	}
}

// Publish delivers in subscription order, so consumers see results in the
// order the refresh loop produced them.
func (b *InMemoryBus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	subs := b.handlers[topic]
	b.mu.RUnlock()

	evt := Event{Topic: topic, Payload: payload}
	for _, s := range subs {
		s.handler(evt)
	}
}

// Subscribers counts handlers on topic.
func (b *InMemoryBus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
