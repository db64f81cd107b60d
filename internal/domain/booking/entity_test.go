package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTransition(t *testing.T) {
	t.Run("active可以完成或取消", func(t *testing.T) {
		bk := &Booking{ID: 1, Status: StatusActive}
		require.NoError(t, bk.Complete())
		assert.Equal(t, StatusCompleted, bk.Status)

		bk = &Booking{ID: 1, Status: StatusActive}
		require.NoError(t, bk.Cancel())
		assert.Equal(t, StatusCancelled, bk.Status)
	})

	t.Run("终态不允许再流转", func(t *testing.T) {
		for _, s := range []Status{StatusCompleted, StatusCancelled, StatusExpired} {
			bk := &Booking{ID: 1, Status: s}
			assert.ErrorIs(t, bk.Complete(), ErrBookingNotActive, "%s不应允许完成", s)
			assert.ErrorIs(t, bk.Cancel(), ErrBookingNotActive, "%s不应允许取消", s)
			assert.Equal(t, s, bk.Status)
		}
	})

	t.Run("IsActive只认active", func(t *testing.T) {
		assert.True(t, (&Booking{Status: StatusActive}).IsActive())
		assert.False(t, (&Booking{Status: StatusCompleted}).IsActive())
		assert.False(t, (&Booking{Status: StatusExpired}).IsActive())
	})
}

func TestBatteryIDs(t *testing.T) {
	bk := &Booking{
		Batteries: []BookingBattery{
			{BatteryID: 204, SlotID: 6},
			{BatteryID: 205, SlotID: 7},
		},
	}
	assert.Equal(t, []uint{204, 205}, bk.BatteryIDs())
	assert.Empty(t, (&Booking{}).BatteryIDs())
}
