package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotTransition(t *testing.T) {
	t.Run("允许的流转", func(t *testing.T) {
		cases := []struct{ from, to SlotStatus }{
			{SlotStatusEmpty, SlotStatusCharging},
			{SlotStatusEmpty, SlotStatusFaulty},
			{SlotStatusCharging, SlotStatusCharged},
			{SlotStatusCharging, SlotStatusEmpty},
			{SlotStatusCharged, SlotStatusLocked},
			{SlotStatusCharged, SlotStatusEmpty},
			{SlotStatusLocked, SlotStatusCharged},
			{SlotStatusLocked, SlotStatusEmpty},
			{SlotStatusFaulty, SlotStatusEmpty},
		}
		for _, c := range cases {
			assert.True(t, CanTransition(c.from, c.to), "%s -> %s应该允许", c.from, c.to)
		}
	})

	t.Run("拒绝的流转", func(t *testing.T) {
		cases := []struct{ from, to SlotStatus }{
			{SlotStatusEmpty, SlotStatusCharged},
			{SlotStatusEmpty, SlotStatusLocked},
			{SlotStatusCharging, SlotStatusLocked},
			{SlotStatusFaulty, SlotStatusCharging},
			{SlotStatusFaulty, SlotStatusCharged},
			{SlotStatusLocked, SlotStatusFaulty},
		}
		for _, c := range cases {
			assert.False(t, CanTransition(c.from, c.to), "%s -> %s应该拒绝", c.from, c.to)
		}
	})

	t.Run("同状态视为允许", func(t *testing.T) {
		assert.True(t, CanTransition(SlotStatusCharging, SlotStatusCharging))
	})

	t.Run("MarkStatus拒绝非法流转", func(t *testing.T) {
		slot := &CabinetSlot{ID: 1, Status: SlotStatusEmpty}
		assert.ErrorIs(t, slot.MarkStatus(SlotStatusLocked), ErrInvalidSlotTransition)
		assert.Equal(t, SlotStatusEmpty, slot.Status)

		assert.NoError(t, slot.MarkStatus(SlotStatusCharging))
		assert.Equal(t, SlotStatusCharging, slot.Status)
	})
}

func TestStatusForHandIn(t *testing.T) {
	// SOH低于15判定故障仓,否则进入充电
	assert.Equal(t, SlotStatusFaulty, StatusForHandIn(10))
	assert.Equal(t, SlotStatusFaulty, StatusForHandIn(14))
	assert.Equal(t, SlotStatusCharging, StatusForHandIn(15))
	assert.Equal(t, SlotStatusCharging, StatusForHandIn(40))
}

func TestSlotPredicates(t *testing.T) {
	t.Run("empty当且仅当不持有电池", func(t *testing.T) {
		assert.False(t, SlotStatusEmpty.HoldsBattery())
		for _, s := range []SlotStatus{SlotStatusCharging, SlotStatusCharged, SlotStatusLocked, SlotStatusFaulty} {
			assert.True(t, s.HoldsBattery(), "%s应持有电池", s)
		}
	})

	t.Run("选仓可用性", func(t *testing.T) {
		assert.True(t, (&CabinetSlot{Status: SlotStatusCharged}).AvailableForHandOut())
		assert.True(t, (&CabinetSlot{Status: SlotStatusCharging}).AvailableForHandOut())
		assert.False(t, (&CabinetSlot{Status: SlotStatusLocked}).AvailableForHandOut())
		assert.False(t, (&CabinetSlot{Status: SlotStatusFaulty}).AvailableForHandOut())
		assert.False(t, (&CabinetSlot{Status: SlotStatusEmpty}).AvailableForHandOut())
	})
}
