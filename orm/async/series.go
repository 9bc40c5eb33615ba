// Package async 提供基于回调（continuation）的异步任务编排
//
// 一个 Task 在执行完成之后必须且只能调用一次传入的 Callback。
// Series 按顺序执行一组 Task，遇到第一个失败就立刻结束，
// 结束时只会调用一次最终的 Callback。
package async

import "sync"

// Callback 异步步骤完成之后的回调，err 为 nil 代表成功
type Callback func(err error)

// Task 一个延迟执行的异步步骤
type Task func(done Callback)

// Series executes tasks strictly one after another. Task i+1 starts only after
// task i invoked its callback with a nil error. The first non-nil error is
// handed to done and the remaining tasks never run. done is invoked exactly once.
//
// A task that never calls its callback stalls the whole series; there is no
// timeout at this level.
func Series(tasks []Task, done Callback) {
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			done(err)
		})
	}

	var run func(i int)
	run = func(i int) {
		if i >= len(tasks) {
			finish(nil)
			return
		}
		// 同一个步骤重复回调的时候，只认第一次
		var step sync.Once
		tasks[i](func(err error) {
			step.Do(func() {
				if err != nil {
					finish(err)
					return
				}
				run(i + 1)
			})
		})
	}
	run(0)
}

// Func 把一个同步函数包装成 Task
func Func(fn func() error) Task {
	return func(done Callback) {
		done(fn())
	}
}

// Noop 什么都不做的 Task
func Noop(done Callback) {
	done(nil)
}

// Wait blocks until task reports its outcome and returns it.
// It is the bridge for callers that live in ordinary blocking code.
func Wait(task Task) error {
	ch := make(chan error, 1)
	task(func(err error) {
		ch <- err
	})
	return <-ch
}
