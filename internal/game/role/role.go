package role

import "math/rand/v2"

// Role 玩家身份
type Role int

const (
	None Role = iota // 未分配（游戏开始前）
	Villager
	Werewolf
	Seer
	Medium
	Hunter
)

// roleKeys 协议中使用的身份标识
var roleKeys = map[Role]string{
	None:     "",
	Villager: "villager",
	Werewolf: "werewolf",
	Seer:     "seer",
	Medium:   "medium",
	Hunter:   "hunter",
}

// roleNames 身份的中文名称
var roleNames = map[Role]string{
	None:     "未分配",
	Villager: "村民",
	Werewolf: "狼人",
	Seer:     "预言家",
	Medium:   "灵媒",
	Hunter:   "猎人",
}

// String 返回协议中使用的身份标识
func (r Role) String() string {
	return roleKeys[r]
}

// DisplayName 返回身份的中文名称
func (r Role) DisplayName() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return roleNames[None]
}

// IsWerewolf 是否属于狼人阵营
func (r Role) IsWerewolf() bool {
	return r == Werewolf
}

// ShuffleFunc 与 rand.Shuffle 签名一致，测试中可注入固定种子
type ShuffleFunc func(n int, swap func(i, j int))

// Quota 按人数返回身份配额（未打乱）
func Quota(n int) []Role {
	if n <= 0 {
		return []Role{}
	}

	roles := make([]Role, 0, n)
	switch {
	case n < 4:
		// 人数不足，全部为村民
	case n <= 5:
		roles = append(roles, Werewolf, Seer, Hunter)
	case n <= 7:
		roles = append(roles, Werewolf, Werewolf, Seer, Hunter, Medium)
	default:
		roles = append(roles, Werewolf, Werewolf, Werewolf, Seer, Hunter, Medium)
	}
	for len(roles) < n {
		roles = append(roles, Villager)
	}
	return roles
}

// Deal 生成 n 人的身份配额并洗牌，结果按座位顺序分配
func Deal(n int, shuffle ShuffleFunc) []Role {
	roles := Quota(n)
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})
	return roles
}
