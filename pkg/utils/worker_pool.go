package utils

import "sync"

// DefaultConcurrency 是未指定并发数时的上限
const DefaultConcurrency = 5

// WorkerPool 控制并发任务的执行
type WorkerPool interface {
	Execute(task func())
	Wait()
}

type defaultWorkerPool struct {
	limit chan struct{}
	wg    sync.WaitGroup
}

func NewWorkerPool(maxConcurrent uint) WorkerPool {
	if maxConcurrent == 0 {
		maxConcurrent = DefaultConcurrency
	}
	return &defaultWorkerPool{
		limit: make(chan struct{}, maxConcurrent),
	}
}

// Execute 提交一个任务到工作池,和sync.WaitGroup.Go()用法一致
// task 内的 panic 需要由调用方自行 recover
func (wp *defaultWorkerPool) Execute(task func()) {
	wp.wg.Go(func() {
		wp.limit <- struct{}{}
		defer func() { <-wp.limit }()
		task()
	})
}

func (wp *defaultWorkerPool) Wait() {
	wp.wg.Wait()
}
