package room

// Phase 房间阶段
type Phase string

const (
	PhaseLobby  Phase = "lobby"  // 等待开始
	PhaseNight  Phase = "night"  // 夜晚行动
	PhaseDay    Phase = "day"    // 白天讨论
	PhaseVoting Phase = "voting" // 投票
	PhaseResult Phase = "result" // 已分胜负（终态）
)

func (p Phase) String() string {
	return string(p)
}

// InGame 是否处于对局中（已开始且未结束）
func (p Phase) InGame() bool {
	switch p {
	case PhaseNight, PhaseDay, PhaseVoting:
		return true
	default:
		return false
	}
}
