package rule

import "github.com/palemoky/werewolf/internal/game/role"

// Votes 白天投票，每个投票者一票，重复投票覆盖
type Votes struct {
	byVoter map[string]string // 投票者 ID -> 目标 ID
}

// NewVotes 创建空的投票集合
func NewVotes() *Votes {
	return &Votes{byVoter: make(map[string]string)}
}

// Cast 记录一票
func (v *Votes) Cast(voterID, targetID string) {
	if v.byVoter == nil {
		v.byVoter = make(map[string]string)
	}
	v.byVoter[voterID] = targetID
}

// TargetOf 返回投票者当前投给的目标
func (v *Votes) TargetOf(voterID string) (string, bool) {
	t, ok := v.byVoter[voterID]
	return t, ok
}

// Len 已投票人数
func (v *Votes) Len() int {
	return len(v.byVoter)
}

// Reset 清空投票
func (v *Votes) Reset() {
	clear(v.byVoter)
}

// MediumResult 灵媒的私密结果
type MediumResult struct {
	Medium *Player
	Target *Player
	Role   role.Role
}

// VoteOutcome 投票结算结果
type VoteOutcome struct {
	Executed     *Player       // nil 表示无人被处决
	MediumResult *MediumResult // 有人被处决且灵媒存活时才有
}

// ResolveVoting 结算投票：唯一最高票的玩家被处决，平票无人出局。
// 无论结果如何，投票都会被清空。
func ResolveVoting(players []*Player, votes *Votes) VoteOutcome {
	defer votes.Reset()

	var outcome VoteOutcome

	targets := make([]string, 0, len(votes.byVoter))
	for _, target := range votes.byVoter {
		targets = append(targets, target)
	}

	target, ok := plurality(targets)
	if !ok {
		return outcome
	}

	executed := findAlive(players, target)
	if executed == nil {
		return outcome
	}
	executed.Alive = false
	outcome.Executed = executed

	if medium := findAliveByRole(players, role.Medium); medium != nil {
		outcome.MediumResult = &MediumResult{
			Medium: medium,
			Target: executed,
			Role:   executed.Role,
		}
	}

	return outcome
}
