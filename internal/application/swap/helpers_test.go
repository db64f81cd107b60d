package swap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/booking"
	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/subscription"
	"github.com/linhai/battswap/internal/domain/vehicle"
)

// swapEnv 场景测试环境:一套内存仓储+快照事务
type swapEnv struct {
	store       *fakeStore
	batteryRepo *fakeBatteryRepo
	stationRepo *fakeStationRepo
	vehicleRepo *fakeVehicleRepo
	swapRepo    *fakeSwapRepo
	subRepo     *fakeSubscriptionRepo
	bookingRepo *fakeBookingRepo
	txManager   *fakeTxManager
	selector    *EligibilitySelector
	accountant  *UsageAccountant
}

func newSwapEnv() *swapEnv {
	store := newFakeStore()
	env := &swapEnv{
		store:       store,
		batteryRepo: &fakeBatteryRepo{store: store},
		stationRepo: &fakeStationRepo{store: store},
		vehicleRepo: &fakeVehicleRepo{store: store},
		swapRepo:    &fakeSwapRepo{store: store},
		subRepo:     &fakeSubscriptionRepo{store: store},
		bookingRepo: &fakeBookingRepo{store: store},
		txManager:   &fakeTxManager{store: store},
	}
	env.selector = NewEligibilitySelector(env.batteryRepo)
	env.accountant = NewUsageAccountant(env.swapRepo, env.subRepo)
	return env
}

// seedStandard 标准场景数据
//
//	站点1,车型1(电池型号1,2仓)
//	车辆1(司机10)携带电池101(SOH40)/102(SOH10)
//	仓位1/2空仓;仓位3=电池201(SOC95),仓位4=电池202(SOC92),
//	仓位5=电池203(SOC89,电量不达标),仓位6=电池204(SOC99,locked)
//	车辆1有生效套餐1,计数器归零
func (env *swapEnv) seedStandard() {
	env.store.stations[1] = &station.Station{ID: 1, Name: "望京换电站"}
	env.store.classes[1] = &vehicle.VehicleClass{ID: 1, Name: "双仓货运车", BatteryClassID: 1, BatterySlots: 2}
	env.store.vehicles[1] = &vehicle.Vehicle{ID: 1, DriverID: 10, ClassID: 1, PlateNo: "京A12345"}

	vid := uint(1)
	env.store.batteries[101] = &battery.Battery{ID: 101, SerialNo: "BAT-101", ClassID: 1, VehicleID: &vid, SOC: 20, SOH: 40}
	env.store.batteries[102] = &battery.Battery{ID: 102, SerialNo: "BAT-102", ClassID: 1, VehicleID: &vid, SOC: 5, SOH: 10}

	env.addSlot(1, station.SlotStatusEmpty, nil)
	env.addSlot(2, station.SlotStatusEmpty, nil)
	env.addSlot(3, station.SlotStatusCharged, &battery.Battery{ID: 201, SerialNo: "BAT-201", ClassID: 1, SOC: 95, SOH: 98})
	env.addSlot(4, station.SlotStatusCharged, &battery.Battery{ID: 202, SerialNo: "BAT-202", ClassID: 1, SOC: 92, SOH: 96})
	env.addSlot(5, station.SlotStatusCharged, &battery.Battery{ID: 203, SerialNo: "BAT-203", ClassID: 1, SOC: 89, SOH: 99})
	env.addSlot(6, station.SlotStatusLocked, &battery.Battery{ID: 204, SerialNo: "BAT-204", ClassID: 1, SOC: 99, SOH: 97})

	now := time.Now()
	env.store.subscriptions[1] = &subscription.Subscription{
		ID:        1,
		VehicleID: 1,
		Status:    subscription.StatusActive,
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   now.AddDate(0, 1, 0),
	}
}

func (env *swapEnv) addSlot(id uint, status station.SlotStatus, b *battery.Battery) {
	env.store.slots[id] = &station.CabinetSlot{ID: id, CabinetID: 1, StationID: 1, Number: int(id), Status: status}
	if b != nil {
		sid := id
		b.SlotID = &sid
		env.store.batteries[b.ID] = b
	}
}

func (env *swapEnv) seedBooking(id uint, status booking.Status, batteryID, slotID uint) {
	env.store.bookings[id] = &booking.Booking{
		ID:        id,
		BookingNo: "BK-001",
		DriverID:  10,
		VehicleID: 1,
		StationID: 1,
		Status:    status,
		Batteries: []booking.BookingBattery{{ID: 1, BookingID: id, BatteryID: batteryID, SlotID: slotID}},
		ExpireAt:  time.Now().Add(time.Hour),
	}
}

// assertInvariants 全量状态不变量检查
// 电池位置互斥 + 仓位empty当且仅当无电池引用
func (env *swapEnv) assertInvariants(t *testing.T) {
	t.Helper()
	occupied := make(map[uint]uint)
	for id, b := range env.store.batteries {
		require.NoError(t, b.ValidateLocation(), "电池%d位置互斥不变量被破坏", id)
		if b.SlotID != nil {
			require.NotContains(t, occupied, *b.SlotID, "仓位%d被多块电池占用", *b.SlotID)
			occupied[*b.SlotID] = id
		}
	}
	for id, sl := range env.store.slots {
		_, hasBattery := occupied[id]
		require.Equal(t, sl.Status.HoldsBattery(), hasBattery,
			"仓位%d状态%s与电池占用情况不一致", id, sl.Status)
	}
}

func cloneVehicle(v *vehicle.Vehicle, id, driverID uint) *vehicle.Vehicle {
	cp := *v
	cp.ID = id
	cp.DriverID = driverID
	return &cp
}

// residentCount 站点在仓电池数(守恒检查用)
func (env *swapEnv) residentCount(stationID uint) int {
	count := 0
	for _, b := range env.store.batteries {
		if b.SlotID == nil {
			continue
		}
		if sl, ok := env.store.slots[*b.SlotID]; ok && sl.StationID == stationID {
			count++
		}
	}
	return count
}
