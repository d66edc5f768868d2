package rule

// Winner 胜负结果
type Winner int

const (
	WinnerNone     Winner = iota // 尚未分出胜负
	WinnerVillage                // 村民阵营胜利
	WinnerWerewolf               // 狼人阵营胜利
)

// String 返回用于日志和指标的标识
func (w Winner) String() string {
	switch w {
	case WinnerVillage:
		return "village"
	case WinnerWerewolf:
		return "werewolf"
	default:
		return "none"
	}
}

// Announcement 返回胜利宣言
func (w Winner) Announcement() string {
	switch w {
	case WinnerVillage:
		return "🎉 村民阵营胜利！"
	case WinnerWerewolf:
		return "🐺 狼人阵营胜利！"
	default:
		return ""
	}
}

// CheckWinner 根据存活身份判断胜负。
// 狼人全灭则村民胜；狼人数量不少于其他存活玩家则狼人胜。
func CheckWinner(players []*Player) Winner {
	wolves, others := 0, 0
	for _, p := range players {
		if !p.Alive {
			continue
		}
		if p.Role.IsWerewolf() {
			wolves++
		} else {
			others++
		}
	}

	switch {
	case wolves == 0:
		return WinnerVillage
	case wolves >= others:
		return WinnerWerewolf
	default:
		return WinnerNone
	}
}
