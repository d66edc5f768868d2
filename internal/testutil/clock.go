//go:build !production

package testutil

import (
	"sync"
	"time"

	"github.com/palemoky/werewolf/internal/types"
)

// FakeClock 手动触发的时钟，AfterFunc 只登记不计时
type FakeClock struct {
	mu     sync.Mutex
	timers []*FakeTimer
}

// FakeTimer FakeClock 登记的定时器
type FakeTimer struct {
	Duration time.Duration

	clock   *FakeClock
	fn      func()
	stopped bool
	fired   bool
}

// NewFakeClock 创建 FakeClock
func NewFakeClock() *FakeClock {
	return &FakeClock{}
}

// AfterFunc 登记定时器
func (c *FakeClock) AfterFunc(d time.Duration, f func()) types.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &FakeTimer{Duration: d, clock: c, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop 停止定时器，已停止或已触发时返回 false
func (t *FakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Fire 无论是否已停止都执行回调，用于模拟与 Stop 竞争的过期触发
func (t *FakeTimer) Fire() {
	t.clock.mu.Lock()
	t.fired = true
	fn := t.fn
	t.clock.mu.Unlock()
	fn()
}

// Pending 返回尚未停止也未触发的定时器数量
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Last 返回最近登记的定时器
func (c *FakeClock) Last() *FakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

// FireNext 触发最早登记的活动定时器，没有则返回 false
func (c *FakeClock) FireNext() bool {
	c.mu.Lock()
	var next *FakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			next = t
			break
		}
	}
	c.mu.Unlock()

	if next == nil {
		return false
	}
	next.Fire()
	return true
}
