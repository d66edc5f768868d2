package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 提交结果标签
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
)

// Collector 业务指标收集器，方法在 nil 接收者上为空操作
type Collector struct {
	registry *prometheus.Registry

	rooms            prometheus.Gauge       // 当前房间数
	clients          prometheus.Gauge       // 当前连接数
	phaseTransitions *prometheus.CounterVec // 阶段切换次数
	gamesFinished    *prometheus.CounterVec // 结束的对局（按胜方）
	submissions      *prometheus.CounterVec // 行动/投票提交（按类型、结果）
}

// NewCollector 创建收集器并注册到独立的 Registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "werewolf_rooms",
			Help: "Number of rooms currently registered",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "werewolf_clients",
			Help: "Number of connected websocket clients",
		}),
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "werewolf_phase_transitions_total",
			Help: "Phase transitions by destination phase",
		}, []string{"phase"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "werewolf_games_finished_total",
			Help: "Finished games by winning faction",
		}, []string{"winner"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "werewolf_submissions_total",
			Help: "Night action and vote submissions by kind and result",
		}, []string{"kind", "result"}),
	}

	c.registry.MustRegister(
		c.rooms,
		c.clients,
		c.phaseTransitions,
		c.gamesFinished,
		c.submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler 返回 /metrics 处理器
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry 返回底层 Registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) RoomCreated() {
	if c != nil {
		c.rooms.Inc()
	}
}

func (c *Collector) RoomDestroyed() {
	if c != nil {
		c.rooms.Dec()
	}
}

func (c *Collector) ClientConnected() {
	if c != nil {
		c.clients.Inc()
	}
}

func (c *Collector) ClientDisconnected() {
	if c != nil {
		c.clients.Dec()
	}
}

// PhaseEntered 记录进入某个阶段
func (c *Collector) PhaseEntered(phase string) {
	if c != nil {
		c.phaseTransitions.WithLabelValues(phase).Inc()
	}
}

// GameFinished 记录对局结束
func (c *Collector) GameFinished(winner string) {
	if c != nil {
		c.gamesFinished.WithLabelValues(winner).Inc()
	}
}

// Submission 记录一次提交，err 非空视为被拒绝
func (c *Collector) Submission(kind string, err error) {
	if c == nil {
		return
	}
	result := ResultAccepted
	if err != nil {
		result = ResultRejected
	}
	c.submissions.WithLabelValues(kind, result).Inc()
}
