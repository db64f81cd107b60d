package booking

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linhai/battswap/internal/domain/booking"
	"github.com/linhai/battswap/internal/domain/station"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

type fakeBookingRepo struct {
	bookings map[uint]*booking.Booking
}

func (r *fakeBookingRepo) get(id uint) (*booking.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	cp := *bk
	cp.Batteries = append([]booking.BookingBattery(nil), bk.Batteries...)
	return &cp, nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uint) (*booking.Booking, error) {
	return r.get(id)
}

func (r *fakeBookingRepo) LockByID(ctx context.Context, id uint) (*booking.Booking, error) {
	return r.get(id)
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id uint, to booking.Status) error {
	bk, ok := r.bookings[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	bk.Status = to
	return nil
}

type fakeStationRepo struct {
	slots map[uint]*station.CabinetSlot
}

func (r *fakeStationRepo) FindStationByID(ctx context.Context, id uint) (*station.Station, error) {
	return nil, station.ErrStationNotFound
}

func (r *fakeStationRepo) FindSlotByID(ctx context.Context, id uint) (*station.CabinetSlot, error) {
	sl, ok := r.slots[id]
	if !ok {
		return nil, station.ErrSlotNotFound
	}
	cp := *sl
	return &cp, nil
}

func (r *fakeStationRepo) LockSlotByID(ctx context.Context, id uint) (*station.CabinetSlot, error) {
	return r.FindSlotByID(ctx, id)
}

func (r *fakeStationRepo) LockSlotsByIDs(ctx context.Context, ids []uint) ([]*station.CabinetSlot, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var result []*station.CabinetSlot
	for _, id := range sorted {
		if sl, ok := r.slots[id]; ok {
			cp := *sl
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeStationRepo) UpdateSlotStatus(ctx context.Context, slotID uint, to station.SlotStatus) error {
	sl, ok := r.slots[slotID]
	if !ok {
		return station.ErrSlotNotFound
	}
	sl.Status = to
	return nil
}

func (r *fakeStationRepo) CountResidentBatteries(ctx context.Context, stationID uint) (int64, error) {
	return 0, nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func newCancelEnv(status booking.Status, slotStatus station.SlotStatus) (*CancelBookingUseCase, *fakeBookingRepo, *fakeStationRepo) {
	bookingRepo := &fakeBookingRepo{bookings: map[uint]*booking.Booking{
		1: {
			ID:        1,
			BookingNo: "BK-001",
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			Status:    status,
			Batteries: []booking.BookingBattery{{ID: 1, BookingID: 1, BatteryID: 204, SlotID: 6}},
			ExpireAt:  time.Now().Add(time.Hour),
		},
	}}
	stationRepo := &fakeStationRepo{slots: map[uint]*station.CabinetSlot{
		6: {ID: 6, CabinetID: 1, StationID: 1, Number: 6, Status: slotStatus},
	}}
	uc := NewCancelBookingUseCase(bookingRepo, stationRepo, passthroughTxManager{})
	return uc, bookingRepo, stationRepo
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("取消预约并解锁仓位", func(t *testing.T) {
		uc, bookingRepo, stationRepo := newCancelEnv(booking.StatusActive, station.SlotStatusLocked)

		resp, err := uc.Execute(ctx, CancelBookingRequest{BookingID: 1, DriverID: 10})
		require.NoError(t, err)
		assert.Equal(t, string(booking.StatusCancelled), resp.Status)
		assert.Equal(t, booking.StatusCancelled, bookingRepo.bookings[1].Status)
		assert.Equal(t, station.SlotStatusCharged, stationRepo.slots[6].Status)
	})

	t.Run("电池已被移走的仓位保持原状", func(t *testing.T) {
		// 运维提前下架了预约电池,仓位已不在locked态
		uc, bookingRepo, stationRepo := newCancelEnv(booking.StatusActive, station.SlotStatusEmpty)

		_, err := uc.Execute(ctx, CancelBookingRequest{BookingID: 1, DriverID: 10})
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, bookingRepo.bookings[1].Status)
		assert.Equal(t, station.SlotStatusEmpty, stationRepo.slots[6].Status)
	})

	t.Run("已完成的预约不允许取消", func(t *testing.T) {
		uc, bookingRepo, _ := newCancelEnv(booking.StatusCompleted, station.SlotStatusLocked)

		_, err := uc.Execute(ctx, CancelBookingRequest{BookingID: 1, DriverID: 10})
		require.ErrorIs(t, err, booking.ErrBookingNotActive)
		assert.Equal(t, booking.StatusCompleted, bookingRepo.bookings[1].Status)
	})

	t.Run("非预约人取消被拒绝", func(t *testing.T) {
		uc, _, _ := newCancelEnv(booking.StatusActive, station.SlotStatusLocked)

		_, err := uc.Execute(ctx, CancelBookingRequest{BookingID: 1, DriverID: 99})
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
