package async

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries(t *testing.T) {
	errStep := errors.New("step failed")

	testCases := []struct {
		name string
		// 第几个（从 0 开始）步骤失败，-1 代表全部成功
		failAt  int
		steps   int
		wantRan []int
		wantErr error
	}{
		{
			name:    "single step",
			failAt:  -1,
			steps:   1,
			wantRan: []int{0},
		},
		{
			name:    "all succeed",
			failAt:  -1,
			steps:   4,
			wantRan: []int{0, 1, 2, 3},
		},
		{
			name:    "first fails",
			failAt:  0,
			steps:   3,
			wantRan: []int{0},
			wantErr: errStep,
		},
		{
			name:    "middle fails",
			failAt:  2,
			steps:   5,
			wantRan: []int{0, 1, 2},
			wantErr: errStep,
		},
		{
			name:    "last fails",
			failAt:  2,
			steps:   3,
			wantRan: []int{0, 1, 2},
			wantErr: errStep,
		},
		{
			name:    "empty",
			failAt:  -1,
			steps:   0,
			wantRan: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ran []int
			tasks := make([]Task, 0, tc.steps)
			for i := 0; i < tc.steps; i++ {
				i := i
				tasks = append(tasks, func(done Callback) {
					ran = append(ran, i)
					if i == tc.failAt {
						done(errStep)
						return
					}
					done(nil)
				})
			}

			calls := 0
			var gotErr error
			Series(tasks, func(err error) {
				calls++
				gotErr = err
			})
			assert.Equal(t, 1, calls)
			assert.Equal(t, tc.wantErr, gotErr)
			assert.Equal(t, tc.wantRan, ran)
		})
	}
}

func TestSeries_Async(t *testing.T) {
	var (
		order   []int
		running bool
	)
	step := func(i int) Task {
		return func(done Callback) {
			// 上一个步骤的回调触发之前，不允许下一个步骤开始
			if running {
				t.Errorf("step %d overlaps with previous step", i)
			}
			running = true
			go func() {
				time.Sleep(time.Millisecond)
				order = append(order, i)
				running = false
				done(nil)
			}()
		}
	}

	err := Wait(func(done Callback) {
		Series([]Task{step(0), step(1), step(2)}, done)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestSeries_DuplicateCallback(t *testing.T) {
	second := 0
	calls := 0
	Series([]Task{
		func(done Callback) {
			done(nil)
			done(nil)
		},
		func(done Callback) {
			second++
			done(nil)
		},
	}, func(err error) {
		calls++
	})
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, calls)
}

func TestSeries_Stalled(t *testing.T) {
	called := false
	Series([]Task{
		func(done Callback) {},
		func(done Callback) {
			t.Fatal("must not run")
		},
	}, func(err error) {
		called = true
	})
	assert.False(t, called)
}

func TestFunc(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, err, Wait(Func(func() error { return err })))
	assert.NoError(t, Wait(Noop))
}
