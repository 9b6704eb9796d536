package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// 启动后先让服务把端口亮起来，预热放到后台延迟执行
const startupDelay = 15 * time.Second

// Job 一个命名的定时任务
type Job struct {
	Name string
	Spec string // 标准五段 cron 表达式
	Run  func()
}

// Scheduler 包装 robfig/cron：注册任务、启动时做一次延迟预热。
// 所有任务串行执行，避免新闻和行情两轮刷新互相抢资源。
type Scheduler struct {
	cron *cron.Cron
	jobs []Job

	mu      sync.Mutex
	running bool
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Register 注册任务，必须在 Start 之前调用
func (s *Scheduler) Register(job Job) error {
	if _, err := s.cron.AddFunc(job.Spec, func() { s.runOne(job) }); err != nil {
		return err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) runOne(job Job) {
	// 串行：同一时刻只跑一个任务
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	log.Printf("job %s started", job.Name)
	job.Run()
	log.Printf("job %s finished in %s", job.Name, time.Since(start).Round(time.Millisecond))
}

// Start 启动定时器，并在短暂延迟后把所有任务各跑一次做缓存预热
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true

	time.AfterFunc(startupDelay, func() {
		log.Println("warming caches with initial run")
		for _, job := range s.jobs {
			s.runOne(job)
		}
	})

	s.cron.Start()
	log.Printf("scheduler started with %d jobs", len(s.jobs))
}

// Stop 停止调度，等待正在执行的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	// 抢到锁说明没有任务在跑
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	log.Println("scheduler stopped")
}
