package abi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func applySchedule(initial map[int]int, sched []ScheduledMove) map[int]int {
	state := map[int]int{}
	for k, v := range initial {
		state[k] = v
	}
	for _, s := range sched {
		if s.IsXchg {
			state[s.From], state[s.To] = state[s.To], state[s.From]
		} else {
			state[s.To] = state[s.From]
		}
	}
	return state
}

func TestScheduleNoOverlapEmitsPlainMoves(t *testing.T) {
	moves := []Move{{From: 1, To: 2}, {From: 3, To: 4}}
	sched, err := Schedule(moves)
	require.NoError(t, err)
	require.Len(t, sched, 2)
	for _, s := range sched {
		require.False(t, s.IsXchg)
	}
}

func TestScheduleSelfMoveIsElided(t *testing.T) {
	sched, err := Schedule([]Move{{From: 5, To: 5}})
	require.NoError(t, err)
	require.Empty(t, sched)
}

func TestScheduleChainPeelsInDependencyOrder(t *testing.T) {
	// v3 <- v2 <- v1, independent source v1 preserved: destinations must be
	// written in an order that never clobbers a value still needed as a
	// source.
	initial := map[int]int{1: 100, 2: 200, 3: 300}
	moves := []Move{{From: 1, To: 2}, {From: 2, To: 3}}
	sched, err := Schedule(moves)
	require.NoError(t, err)
	final := applySchedule(initial, sched)
	require.Equal(t, 100, final[2])
	require.Equal(t, 200, final[3])
}

func TestScheduleTwoCycleUsesXchg(t *testing.T) {
	initial := map[int]int{1: 100, 2: 200}
	moves := []Move{{From: 1, To: 2}, {From: 2, To: 1}}
	sched, err := Schedule(moves)
	require.NoError(t, err)
	require.Len(t, sched, 1)
	require.True(t, sched[0].IsXchg)
	final := applySchedule(initial, sched)
	require.Equal(t, 200, final[1])
	require.Equal(t, 100, final[2])
}

func TestScheduleThreeCycleUsesXchgChain(t *testing.T) {
	initial := map[int]int{0: 0xA, 1: 0xB, 2: 0xC}
	// desired final state: v0<-v1, v1<-v2, v2<-v0 (a rotation)
	moves := []Move{{From: 1, To: 0}, {From: 2, To: 1}, {From: 0, To: 2}}
	sched, err := Schedule(moves)
	require.NoError(t, err)
	for _, s := range sched {
		require.True(t, s.IsXchg)
	}
	final := applySchedule(initial, sched)
	require.Equal(t, 0xB, final[0])
	require.Equal(t, 0xC, final[1])
	require.Equal(t, 0xA, final[2])
}

func TestScheduleMixedPeelAndCycle(t *testing.T) {
	initial := map[int]int{0: 10, 1: 20, 2: 30, 3: 40}
	// 0<->1 is a cycle; 2<-3 is independent (3 untouched otherwise).
	moves := []Move{{From: 0, To: 1}, {From: 1, To: 0}, {From: 3, To: 2}}
	sched, err := Schedule(moves)
	require.NoError(t, err)
	final := applySchedule(initial, sched)
	require.Equal(t, 20, final[0])
	require.Equal(t, 10, final[1])
	require.Equal(t, 40, final[2])
}

func TestScheduleDuplicateDestinationIsRejected(t *testing.T) {
	_, err := Schedule([]Move{{From: 1, To: 3}, {From: 2, To: 3}})
	require.Error(t, err)
}
