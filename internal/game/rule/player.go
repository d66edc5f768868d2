package rule

import "github.com/palemoky/werewolf/internal/game/role"

// Player 结算所需的玩家视图
type Player struct {
	ID    string
	Name  string
	Role  role.Role
	Alive bool
}

// findPlayer 按 ID 查找玩家（不论生死）
func findPlayer(players []*Player, id string) *Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// findAlive 按 ID 查找存活玩家
func findAlive(players []*Player, id string) *Player {
	for _, p := range players {
		if p.ID == id && p.Alive {
			return p
		}
	}
	return nil
}

// findAliveByRole 查找第一个持有指定身份的存活玩家
func findAliveByRole(players []*Player, r role.Role) *Player {
	for _, p := range players {
		if p.Role == r && p.Alive {
			return p
		}
	}
	return nil
}

// plurality 统计目标得票，只有唯一最高票才算有效；平票返回 false
func plurality(targets []string) (string, bool) {
	tally := make(map[string]int, len(targets))
	for _, t := range targets {
		if t == "" {
			continue
		}
		tally[t]++
	}

	winner, best, tied := "", 0, false
	for target, count := range tally {
		switch {
		case count > best:
			winner, best, tied = target, count, false
		case count == best:
			tied = true
		}
	}

	if best == 0 || tied {
		return "", false
	}
	return winner, true
}
