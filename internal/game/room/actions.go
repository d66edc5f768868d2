package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/palemoky/werewolf/internal/apperrors"
	"github.com/palemoky/werewolf/internal/game/role"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

const maxChatRunes = 200

// submission 一类提交的接受条件与写入方式
type submission struct {
	kind  string
	role  role.Role // None 表示不限身份
	phase Phase
	apply func(r *Room, actor *Player, targetID string)
}

var (
	wolfSubmission = submission{
		kind:  "wolf",
		role:  role.Werewolf,
		phase: PhaseNight,
		apply: func(r *Room, actor *Player, targetID string) {
			r.night.SetWolfTarget(actor.ID, targetID)
		},
	}
	seerSubmission = submission{
		kind:  "seer",
		role:  role.Seer,
		phase: PhaseNight,
		apply: func(r *Room, _ *Player, targetID string) {
			r.night.SetSeerTarget(targetID)
		},
	}
	hunterSubmission = submission{
		kind:  "hunter",
		role:  role.Hunter,
		phase: PhaseNight,
		apply: func(r *Room, _ *Player, targetID string) {
			r.night.SetHunterTarget(targetID)
		},
	}
	voteSubmission = submission{
		kind:  "vote",
		phase: PhaseVoting,
		apply: func(r *Room, actor *Player, targetID string) {
			r.votes.Cast(actor.ID, targetID)

			targetName := "未知玩家"
			if target := r.findPlayerLocked(targetID); target != nil {
				targetName = target.Name
			}
			r.announceLocked(fmt.Sprintf("🗳️ %s 投票给了 %s", actor.Name, targetName))
		},
	}
)

// SubmitWolfTarget 狼人提交袭击目标
func (rm *RoomManager) SubmitWolfTarget(client types.ClientInterface, roomID, targetID string) error {
	return rm.submit(client, roomID, targetID, wolfSubmission)
}

// SubmitSeerTarget 预言家提交查验目标
func (rm *RoomManager) SubmitSeerTarget(client types.ClientInterface, roomID, targetID string) error {
	return rm.submit(client, roomID, targetID, seerSubmission)
}

// SubmitHunterTarget 猎人提交守护目标
func (rm *RoomManager) SubmitHunterTarget(client types.ClientInterface, roomID, targetID string) error {
	return rm.submit(client, roomID, targetID, hunterSubmission)
}

// SubmitVote 存活玩家在投票阶段投票
func (rm *RoomManager) SubmitVote(client types.ClientInterface, roomID, targetID string) error {
	return rm.submit(client, roomID, targetID, voteSubmission)
}

// submit 校验提交者并写入待结算集合。被拒绝的提交不会改变任何状态。
func (rm *RoomManager) submit(client types.ClientInterface, roomID, targetID string, s submission) (err error) {
	defer func() { rm.metrics.Submission(s.kind, err) }()

	r, err := rm.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	actor := r.findPlayerLocked(client.GetID())
	switch {
	case actor == nil:
		return apperrors.ErrNotInRoom
	case !actor.Alive:
		return apperrors.ErrNotAlive
	case s.role != role.None && actor.Role != s.role:
		return apperrors.ErrWrongRole
	case r.phase != s.phase:
		return apperrors.ErrPhaseMismatch
	}

	s.apply(r, actor, targetID)
	return nil
}

// Chat 向房间广播聊天消息
func (rm *RoomManager) Chat(client types.ClientInterface, roomID, text string) error {
	r, err := rm.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	sender := r.findPlayerLocked(client.GetID())
	if sender == nil {
		return apperrors.ErrNotInRoom
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runes := []rune(text); len(runes) > maxChatRunes {
		text = string(runes[:maxChatRunes])
	}

	r.broadcastLocked(codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		From: sender.Name,
		Text: text,
		Time: time.Now().UnixMilli(),
	}))
	return nil
}
