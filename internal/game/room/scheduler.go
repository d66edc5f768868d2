package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/werewolf/internal/game/rule"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

// Durations 各阶段时长
type Durations struct {
	Night  time.Duration
	Day    time.Duration
	Voting time.Duration
}

// DefaultDurations 默认阶段时长
func DefaultDurations() Durations {
	return Durations{
		Night:  60 * time.Second,
		Day:    60 * time.Second,
		Voting: 30 * time.Second,
	}
}

// For 返回阶段时长，没有定时器的阶段返回 0
func (d Durations) For(p Phase) time.Duration {
	switch p {
	case PhaseNight:
		return d.Night
	case PhaseDay:
		return d.Day
	case PhaseVoting:
		return d.Voting
	default:
		return 0
	}
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) types.Timer {
	return time.AfterFunc(d, f)
}

// armLocked 为当前阶段启动定时器，旧定时器会被停止
func (rm *RoomManager) armLocked(r *Room) {
	rm.stopTimerLocked(r)
	r.seq++
	seq, phase := r.seq, r.phase
	r.timer = rm.clock.AfterFunc(rm.durations.For(phase), func() {
		rm.onTimer(r, phase, seq)
	})
}

func (rm *RoomManager) stopTimerLocked(r *Room) {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// onTimer 定时器回调。房间已移除、阶段已变化或序号不符时不做任何事。
func (rm *RoomManager) onTimer(r *Room, phase Phase, seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.phase != phase || r.seq != seq {
		log.Debug().Str("room", r.ID).Str("phase", phase.String()).Msg("忽略过期的阶段定时器")
		return
	}
	r.timer = nil
	rm.advanceLocked(r)
}

func (rm *RoomManager) advanceLocked(r *Room) {
	switch r.phase {
	case PhaseNight:
		rm.endNightLocked(r)
	case PhaseDay:
		rm.enterPhaseLocked(r, PhaseVoting)
		r.announceLocked("🗳️ 投票时间到了，请选择要放逐的玩家。")
		rm.armLocked(r)
	case PhaseVoting:
		rm.endVotingLocked(r)
	}
}

func (rm *RoomManager) endNightLocked(r *Room) {
	outcome := rule.ResolveNight(r.rulePlayersLocked(), r.night)

	if outcome.Victim != nil {
		r.announceLocked(fmt.Sprintf("⚰️ %s 昨晚遇害了！", outcome.Victim.Name))
	} else {
		r.announceLocked("🌙 昨晚是平安夜。")
	}

	if res := outcome.SeerResult; res != nil {
		r.sendLocked(res.Seer.ID, codec.MustNewMessage(protocol.MsgSeerResult, protocol.SeerResultPayload{
			Name:   res.Target.Name,
			IsWolf: res.IsWolf,
		}))
	}

	if rm.finishIfWonLocked(r) {
		return
	}

	rm.enterPhaseLocked(r, PhaseDay)
	r.announceLocked("☀️ 天亮了，请开始讨论。")
	rm.armLocked(r)
}

func (rm *RoomManager) endVotingLocked(r *Room) {
	outcome := rule.ResolveVoting(r.rulePlayersLocked(), r.votes)

	if outcome.Executed != nil {
		r.announceLocked(fmt.Sprintf("⚰️ %s 被放逐了！", outcome.Executed.Name))
	} else {
		r.announceLocked("⚖️ 今天没有人被放逐。")
	}

	if res := outcome.MediumResult; res != nil {
		r.sendLocked(res.Medium.ID, codec.MustNewMessage(protocol.MsgMediumResult, protocol.MediumResultPayload{
			Name:     res.Target.Name,
			Role:     res.Role.String(),
			RoleName: res.Role.DisplayName(),
		}))
	}

	if rm.finishIfWonLocked(r) {
		return
	}

	r.dayCount++
	rm.enterPhaseLocked(r, PhaseNight)
	r.announceLocked("🌙 天黑请闭眼，请各身份开始行动。")
	rm.armLocked(r)
}

// finishIfWonLocked 检查胜负，分出胜负时进入终态并停止调度
func (rm *RoomManager) finishIfWonLocked(r *Room) bool {
	winner := rule.CheckWinner(r.rulePlayersLocked())
	if winner == rule.WinnerNone {
		return false
	}

	rm.stopTimerLocked(r)
	rm.enterPhaseLocked(r, PhaseResult)
	r.announceLocked(winner.Announcement())
	r.announceLocked(revealRoles(r.players))

	rm.metrics.GameFinished(winner.String())
	rm.persist.enqueue(persistJob{roomID: r.ID, winner: winner.String()})

	log.Info().Str("room", r.ID).Str("winner", winner.String()).Int("day", r.dayCount).Msg("🏁 对局结束")
	return true
}

// enterPhaseLocked 切换阶段并广播状态
func (rm *RoomManager) enterPhaseLocked(r *Room, phase Phase) {
	r.phase = phase
	rm.metrics.PhaseEntered(phase.String())
	r.broadcastStateLocked()
	rm.saveLocked(r)

	log.Debug().Str("room", r.ID).Str("phase", phase.String()).Int("day", r.dayCount).Msg("阶段切换")
}

func revealRoles(players []*Player) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = fmt.Sprintf("%s(%s)", p.Name, p.Role.DisplayName())
	}
	return "📜 身份公布：" + strings.Join(parts, "、")
}
