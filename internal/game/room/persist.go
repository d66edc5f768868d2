package room

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/werewolf/internal/server/storage"
)

const (
	persistQueueSize = 256
	persistTimeout   = 3 * time.Second
)

// Store 房间快照与胜负统计的写入端，storage.RedisStore 满足该接口
type Store interface {
	SaveRoom(ctx context.Context, roomID string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, roomID string) error
	RecordWin(ctx context.Context, winner string) error
}

type persistJob struct {
	roomID string
	data   *storage.RoomData // 非 nil 时保存快照
	remove bool              // 删除快照
	winner string            // 非空时累加胜场
}

// persister 单协程按入队顺序写入存储，同一房间的保存与删除不会乱序
type persister struct {
	store Store
	jobs  chan persistJob
	done  chan struct{}
	once  sync.Once
}

func newPersister(store Store) *persister {
	p := &persister{
		store: store,
		jobs:  make(chan persistJob, persistQueueSize),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) run() {
	for {
		select {
		case job := <-p.jobs:
			p.handle(job)
		case <-p.done:
			return
		}
	}
}

func (p *persister) handle(job persistJob) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	switch {
	case job.remove:
		err = p.store.DeleteRoom(ctx, job.roomID)
	case job.data != nil:
		err = p.store.SaveRoom(ctx, job.roomID, job.data)
	case job.winner != "":
		err = p.store.RecordWin(ctx, job.winner)
	}
	if err != nil {
		log.Warn().Err(err).Str("room", job.roomID).Msg("⚠️ 写入存储失败")
	}
}

// enqueue 非阻塞入队，队列满时丢弃
func (p *persister) enqueue(job persistJob) {
	if p == nil {
		return
	}
	select {
	case <-p.done:
	case p.jobs <- job:
	default:
		log.Warn().Str("room", job.roomID).Msg("⚠️ 存储队列已满，丢弃写入")
	}
}

func (p *persister) stop() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.done) })
}

// saveLocked 入队房间快照，调用方持有 r.mu
func (rm *RoomManager) saveLocked(r *Room) {
	if rm.persist == nil {
		return
	}
	rm.persist.enqueue(persistJob{roomID: r.ID, data: r.snapshotLocked()})
}
