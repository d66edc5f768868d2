package rule

import "github.com/palemoky/werewolf/internal/game/role"

// NightActions 夜晚收集的行动。每个狼人一票，预言家和猎人各一个槽位。
type NightActions struct {
	wolves map[string]string // 狼人 ID -> 目标 ID
	seer   *string
	hunter *string
}

// NewNightActions 创建空的夜晚行动集合
func NewNightActions() *NightActions {
	return &NightActions{wolves: make(map[string]string)}
}

// SetWolfTarget 记录狼人的袭击目标，重复提交覆盖
func (a *NightActions) SetWolfTarget(wolfID, targetID string) {
	if a.wolves == nil {
		a.wolves = make(map[string]string)
	}
	a.wolves[wolfID] = targetID
}

// SetSeerTarget 记录预言家的查验目标
func (a *NightActions) SetSeerTarget(targetID string) {
	a.seer = &targetID
}

// SetHunterTarget 记录猎人的守护目标
func (a *NightActions) SetHunterTarget(targetID string) {
	a.hunter = &targetID
}

// WolfTarget 返回某个狼人当前的目标
func (a *NightActions) WolfTarget(wolfID string) (string, bool) {
	t, ok := a.wolves[wolfID]
	return t, ok
}

// SeerTarget 返回预言家当前的目标
func (a *NightActions) SeerTarget() (string, bool) {
	if a.seer == nil {
		return "", false
	}
	return *a.seer, true
}

// HunterTarget 返回猎人当前的目标
func (a *NightActions) HunterTarget() (string, bool) {
	if a.hunter == nil {
		return "", false
	}
	return *a.hunter, true
}

// IsEmpty 是否没有任何行动
func (a *NightActions) IsEmpty() bool {
	return len(a.wolves) == 0 && a.seer == nil && a.hunter == nil
}

// Reset 清空所有行动
func (a *NightActions) Reset() {
	clear(a.wolves)
	a.seer = nil
	a.hunter = nil
}

// SeerResult 预言家的私密查验结果
type SeerResult struct {
	Seer   *Player
	Target *Player
	IsWolf bool
}

// NightOutcome 夜晚结算结果
type NightOutcome struct {
	Victim     *Player     // nil 表示平安夜
	SeerResult *SeerResult // nil 表示没有结果需要发送
}

// ResolveNight 结算夜晚行动并淘汰被袭击的玩家。
// 无论结果如何，行动集合都会被清空。
func ResolveNight(players []*Player, actions *NightActions) NightOutcome {
	defer actions.Reset()

	var outcome NightOutcome

	targets := make([]string, 0, len(actions.wolves))
	for _, target := range actions.wolves {
		targets = append(targets, target)
	}

	if target, ok := plurality(targets); ok {
		protected, guarded := actions.HunterTarget()
		if !guarded || protected != target {
			if victim := findAlive(players, target); victim != nil {
				victim.Alive = false
				outcome.Victim = victim
			}
		}
	}

	if targetID, ok := actions.SeerTarget(); ok {
		seer := findAliveByRole(players, role.Seer)
		target := findPlayer(players, targetID)
		if seer != nil && target != nil {
			outcome.SeerResult = &SeerResult{
				Seer:   seer,
				Target: target,
				IsWolf: target.Role.IsWerewolf(),
			}
		}
	}

	return outcome
}
