// Package runner 对多个远程并发执行操作
package runner

import (
	"context"
	"fmt"

	"github.com/wentf9/nij/pkg/logger"
	"github.com/wentf9/nij/pkg/utils"
	"github.com/wentf9/nij/pkg/utils/concurrent"
)

// Result 是单个远程的执行结果, Err 为 nil 表示成功
type Result struct {
	Name string
	Err  error
}

// Item 是 Gather 成功取回的值
type Item[T any] struct {
	Name  string
	Value T
}

type options struct {
	onResult func(Result)
}

type Option func(*options)

// WithResultCallback 每个远程完成时调用 fn (在工作协程中调用, fn 需要并发安全)
func WithResultCallback(fn func(Result)) Option {
	return func(o *options) { o.onResult = fn }
}

type outcome[T any] struct {
	value T
	err   error
}

// run 并发执行 fn, 结果按名称存入并发 map; panic 会转换为该远程的错误
func run[T any](ctx context.Context, names []string, limit int, fn func(ctx context.Context, name string) (T, error), o options) *concurrent.Map[string, outcome[T]] {
	if limit <= 0 || limit > len(names) {
		limit = len(names)
	}
	results := concurrent.NewMap[string, outcome[T]](concurrent.HashString)
	if len(names) == 0 {
		return results
	}
	wp := utils.NewWorkerPool(uint(limit))
	for _, name := range names {
		wp.Execute(func() {
			var out outcome[T]
			defer func() {
				if r := recover(); r != nil {
					logger.Logger.Error("task panicked", "remote", name, "panic", r)
					out = outcome[T]{err: fmt.Errorf("panic: %v", r)}
				}
				results.Set(name, out)
				if o.onResult != nil {
					o.onResult(Result{Name: name, Err: out.err})
				}
			}()
			if err := ctx.Err(); err != nil {
				out.err = err
				return
			}
			out.value, out.err = fn(ctx, name)
		})
	}
	wp.Wait()
	return results
}

// Gather 并发取回所有远程的值并等待全部完成
// 成功项和失败项分别按 names 的顺序返回, 调用方随后在当前协程执行共享步骤
func Gather[T any](ctx context.Context, names []string, limit int, fn func(ctx context.Context, name string) (T, error), opts ...Option) ([]Item[T], []Result) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	results := run(ctx, names, limit, fn, o)
	var items []Item[T]
	var failed []Result
	for _, name := range names {
		out, _ := results.Get(name)
		if out.err != nil {
			failed = append(failed, Result{Name: name, Err: out.err})
			continue
		}
		items = append(items, Item[T]{Name: name, Value: out.value})
	}
	return items, failed
}

// RunEach 对每个远程独立执行 fn, 失败不影响其他远程; 结果按 names 的顺序返回
func RunEach(ctx context.Context, names []string, limit int, fn func(ctx context.Context, name string) error, opts ...Option) []Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	results := run(ctx, names, limit, func(ctx context.Context, name string) (struct{}, error) {
		return struct{}{}, fn(ctx, name)
	}, o)
	out := make([]Result, 0, len(names))
	for _, name := range names {
		r, _ := results.Get(name)
		out = append(out, Result{Name: name, Err: r.err})
	}
	return out
}

// Failed 返回结果中失败的项
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
