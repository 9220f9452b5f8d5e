package work

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RussellLuo/timingwheel"

	"github.com/yola1107/cards56/library/ext"
	"github.com/yola1107/cards56/library/zlog"
)

const (
	defaultTickPrecision = 100 * time.Millisecond // 时间轮默认精度
	defaultWheelSize     = 128                    // 时间轮默认槽位数
)

// Scheduler 定时任务调度器接口
type Scheduler interface {
	Len() int                                          // 当前注册任务数量
	Once(delay time.Duration, f func()) int64          // 注册一次性任务
	Forever(interval time.Duration, f func()) int64    // 注册周期任务
	ForeverNow(interval time.Duration, f func()) int64 // 注册周期任务并立即执行一次
	Cancel(taskID int64)                               // 取消指定任务
	CancelAll()                                        // 取消所有任务
	Stop()                                             // 停止调度器
}

// IExecutor 任务执行器接口，用于自定义任务执行方式（如协程池）
type IExecutor interface {
	Post(job func())
}

type SchedulerOption func(*wheelScheduler)

func WithTick(d time.Duration) SchedulerOption {
	return func(s *wheelScheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

func WithContext(ctx context.Context) SchedulerOption {
	return func(s *wheelScheduler) { s.ctx = ctx }
}

func WithExecutor(exec IExecutor) SchedulerOption {
	return func(s *wheelScheduler) { s.executor = exec }
}

// wheelScheduler 定时任务调度器，基于时间轮实现
type wheelScheduler struct {
	tick     time.Duration
	executor IExecutor
	tw       *timingwheel.TimingWheel
	tasks    sync.Map // map[int64]*taskEntry
	nextID   atomic.Int64
	shutdown atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

type taskEntry struct {
	timer     *timingwheel.Timer
	cancelled atomic.Bool
	repeated  bool
	task      func()
}

// every 周期触发策略，防止时间漂移
type every struct {
	interval time.Duration
}

func (e *every) Next(t time.Time) time.Time {
	return t.Add(e.interval)
}

// NewScheduler 创建时间轮调度器实例
func NewScheduler(opts ...SchedulerOption) Scheduler {
	s := &wheelScheduler{
		tick: defaultTickPrecision,
		ctx:  context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ctx, s.cancel = context.WithCancel(s.ctx)
	s.tw = timingwheel.NewTimingWheel(s.tick, defaultWheelSize)
	s.tw.Start()
	go func() {
		<-s.ctx.Done()
		s.tw.Stop()
	}()
	return s
}

func (s *wheelScheduler) Len() int {
	count := 0
	s.tasks.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (s *wheelScheduler) Once(delay time.Duration, f func()) int64 {
	return s.schedule(delay, false, f)
}

func (s *wheelScheduler) Forever(interval time.Duration, f func()) int64 {
	return s.schedule(interval, true, f)
}

func (s *wheelScheduler) ForeverNow(interval time.Duration, f func()) int64 {
	s.executeAsync(f)
	return s.schedule(interval, true, f)
}

func (s *wheelScheduler) Cancel(taskID int64) {
	s.removeTask(taskID)
}

func (s *wheelScheduler) CancelAll() {
	s.tasks.Range(func(key, _ any) bool {
		s.removeTask(key.(int64))
		return true
	})
}

func (s *wheelScheduler) Stop() {
	s.once.Do(func() {
		s.shutdown.Store(true)
		s.CancelAll()
		s.cancel()
	})
}

func (s *wheelScheduler) schedule(delay time.Duration, repeated bool, f func()) int64 {
	if s.shutdown.Load() || s.ctx.Err() != nil {
		zlog.Warn("scheduler is shut down; task rejected")
		return -1
	}

	taskID := s.nextID.Add(1)
	entry := &taskEntry{repeated: repeated, task: f}
	// 先存储到 map，防止 timer 先触发导致 removeTask 找不到
	s.tasks.Store(taskID, entry)

	wrapped := func() {
		if entry.cancelled.Load() {
			return
		}
		s.executeAsync(func() {
			defer func() {
				if !repeated {
					s.removeTask(taskID)
				}
			}()
			if entry.cancelled.Load() {
				return
			}
			f()
		})
	}

	if repeated {
		entry.timer = s.tw.ScheduleFunc(&every{interval: delay}, wrapped)
	} else {
		entry.timer = s.tw.AfterFunc(delay, wrapped)
	}

	return taskID
}

func (s *wheelScheduler) removeTask(taskID int64) {
	val, ok := s.tasks.Load(taskID)
	if !ok {
		return
	}
	entry := val.(*taskEntry)

	if !entry.cancelled.CompareAndSwap(false, true) {
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
		entry.timer = nil
	}
	s.tasks.Delete(taskID)
	entry.task = nil
}

func (s *wheelScheduler) executeAsync(f func()) {
	run := func() {
		defer ext.RecoverFromError(nil)
		f()
	}
	if s.executor != nil {
		s.executor.Post(run)
	} else {
		go run()
	}
}
