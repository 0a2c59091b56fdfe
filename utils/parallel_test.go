package utils

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.viam.com/test"
)

func TestGroupWorkParallel(t *testing.T) {
	for _, numGroups := range []int{1, 3, 4, 16} {
		seen := make([]int, 10)
		var groupsDone int
		var mu sync.Mutex
		err := GroupWorkParallel(context.Background(), numGroups, len(seen), func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc) {
			test.That(t, to-from, test.ShouldEqual, groupSize)
			return func(memberNum, workNum int) error {
					test.That(t, workNum, test.ShouldEqual, from+memberNum)
					seen[workNum]++
					return nil
				}, func() {
					mu.Lock()
					groupsDone++
					mu.Unlock()
				}
		})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, groupsDone, test.ShouldEqual, min(numGroups, len(seen)))
		for _, count := range seen {
			test.That(t, count, test.ShouldEqual, 1)
		}
	}
}

func TestGroupWorkParallelErrors(t *testing.T) {
	bad := errors.New("bad")
	err := GroupWorkParallel(context.Background(), 2, 4, func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc) {
		return func(memberNum, workNum int) error {
			if workNum == 3 {
				return bad
			}
			return nil
		}, nil
	})
	test.That(t, errors.Is(err, bad), test.ShouldBeTrue)

	err = GroupWorkParallel(context.Background(), 2, 4, func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc) {
		return func(memberNum, workNum int) error {
			panic("boom")
		}, nil
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGroupWorkParallelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := GroupWorkParallel(ctx, 1, 5, func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc) {
		return func(memberNum, workNum int) error {
			calls++
			return nil
		}, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, calls, test.ShouldEqual, 0)

	err = GroupWorkParallel(context.Background(), 4, 0, nil)
	test.That(t, err, test.ShouldBeNil)
}
