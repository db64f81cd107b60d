package swap

// 应用层场景测试的内存替身
// 用map模拟各张表,事务用"快照-回滚"模拟:fn返回错误时恢复快照,
// 与数据库事务的可见行为一致(失败后状态与调用前完全相同)

import (
	"context"
	"sort"
	"time"

	"github.com/linhai/battswap/internal/domain/battery"
	"github.com/linhai/battswap/internal/domain/booking"
	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/subscription"
	"github.com/linhai/battswap/internal/domain/swap"
	"github.com/linhai/battswap/internal/domain/vehicle"
)

type fakeStore struct {
	batteries     map[uint]*battery.Battery
	slots         map[uint]*station.CabinetSlot
	stations      map[uint]*station.Station
	vehicles      map[uint]*vehicle.Vehicle
	classes       map[uint]*vehicle.VehicleClass
	subscriptions map[uint]*subscription.Subscription
	bookings      map[uint]*booking.Booking
	records       []*swap.Record
	nextRecordID  uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		batteries:     make(map[uint]*battery.Battery),
		slots:         make(map[uint]*station.CabinetSlot),
		stations:      make(map[uint]*station.Station),
		vehicles:      make(map[uint]*vehicle.Vehicle),
		classes:       make(map[uint]*vehicle.VehicleClass),
		subscriptions: make(map[uint]*subscription.Subscription),
		bookings:      make(map[uint]*booking.Booking),
		nextRecordID:  1,
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	c.nextRecordID = s.nextRecordID
	for id, b := range s.batteries {
		cp := *b
		if b.VehicleID != nil {
			v := *b.VehicleID
			cp.VehicleID = &v
		}
		if b.SlotID != nil {
			v := *b.SlotID
			cp.SlotID = &v
		}
		c.batteries[id] = &cp
	}
	for id, sl := range s.slots {
		cp := *sl
		c.slots[id] = &cp
	}
	for id, st := range s.stations {
		cp := *st
		c.stations[id] = &cp
	}
	for id, v := range s.vehicles {
		cp := *v
		c.vehicles[id] = &cp
	}
	for id, cl := range s.classes {
		cp := *cl
		c.classes[id] = &cp
	}
	for id, sub := range s.subscriptions {
		cp := *sub
		c.subscriptions[id] = &cp
	}
	for id, bk := range s.bookings {
		cp := *bk
		cp.Batteries = append([]booking.BookingBattery(nil), bk.Batteries...)
		c.bookings[id] = &cp
	}
	for _, r := range s.records {
		cp := *r
		if r.BatteryInID != nil {
			v := *r.BatteryInID
			cp.BatteryInID = &v
		}
		if r.SOHIn != nil {
			v := *r.SOHIn
			cp.SOHIn = &v
		}
		c.records = append(c.records, &cp)
	}
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	snap := from.clone()
	s.batteries = snap.batteries
	s.slots = snap.slots
	s.stations = snap.stations
	s.vehicles = snap.vehicles
	s.classes = snap.classes
	s.subscriptions = snap.subscriptions
	s.bookings = snap.bookings
	s.records = snap.records
	s.nextRecordID = snap.nextRecordID
}

// fakeTxManager 快照式事务:失败恢复调用前状态
type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	snapshot := m.store.clone()
	if err := fn(ctx); err != nil {
		m.store.restore(snapshot)
		return err
	}
	return nil
}

// =========================================
// battery.Repository
// =========================================

type fakeBatteryRepo struct {
	store *fakeStore
}

func (r *fakeBatteryRepo) get(id uint) (*battery.Battery, error) {
	b, ok := r.store.batteries[id]
	if !ok {
		return nil, battery.ErrBatteryNotFound
	}
	cp := *b
	if b.VehicleID != nil {
		v := *b.VehicleID
		cp.VehicleID = &v
	}
	if b.SlotID != nil {
		v := *b.SlotID
		cp.SlotID = &v
	}
	return &cp, nil
}

func (r *fakeBatteryRepo) FindByID(ctx context.Context, id uint) (*battery.Battery, error) {
	return r.get(id)
}

func (r *fakeBatteryRepo) FindBySerial(ctx context.Context, serialNo string) (*battery.Battery, error) {
	for id, b := range r.store.batteries {
		if b.SerialNo == serialNo {
			return r.get(id)
		}
	}
	return nil, battery.ErrBatteryNotFound
}

func (r *fakeBatteryRepo) FindByVehicle(ctx context.Context, vehicleID uint) ([]*battery.Battery, error) {
	var result []*battery.Battery
	for id, b := range r.store.batteries {
		if b.VehicleID != nil && *b.VehicleID == vehicleID {
			cp, _ := r.get(id)
			result = append(result, cp)
		}
	}
	return result, nil
}

func (r *fakeBatteryRepo) FindEligibleAtStation(ctx context.Context, stationID, classID uint, limit int, lock bool) ([]*battery.Battery, error) {
	var result []*battery.Battery
	for id, b := range r.store.batteries {
		if b.SlotID == nil || b.Faulty || b.ClassID != classID || b.SOC < battery.EligibleSOCMin {
			continue
		}
		slot, ok := r.store.slots[*b.SlotID]
		if !ok || slot.StationID != stationID {
			continue
		}
		if slot.Status != station.SlotStatusCharged && slot.Status != station.SlotStatusCharging {
			continue
		}
		cp, _ := r.get(id)
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].SOC != result[j].SOC {
			return result[i].SOC > result[j].SOC
		}
		return *result[i].SlotID < *result[j].SlotID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeBatteryRepo) LockByID(ctx context.Context, id uint) (*battery.Battery, error) {
	return r.get(id)
}

func (r *fakeBatteryRepo) AttachToVehicle(ctx context.Context, batteryID, vehicleID uint) error {
	b, ok := r.store.batteries[batteryID]
	if !ok {
		return battery.ErrBatteryNotFound
	}
	v := vehicleID
	b.VehicleID = &v
	b.SlotID = nil
	return nil
}

func (r *fakeBatteryRepo) PlaceInSlot(ctx context.Context, batteryID, slotID uint) error {
	b, ok := r.store.batteries[batteryID]
	if !ok {
		return battery.ErrBatteryNotFound
	}
	s := slotID
	b.SlotID = &s
	b.VehicleID = nil
	return nil
}

// =========================================
// station.Repository
// =========================================

type fakeStationRepo struct {
	store *fakeStore
}

func (r *fakeStationRepo) FindStationByID(ctx context.Context, id uint) (*station.Station, error) {
	st, ok := r.store.stations[id]
	if !ok {
		return nil, station.ErrStationNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *fakeStationRepo) FindSlotByID(ctx context.Context, id uint) (*station.CabinetSlot, error) {
	sl, ok := r.store.slots[id]
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
		if sl, ok := r.store.slots[id]; ok {
			cp := *sl
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeStationRepo) UpdateSlotStatus(ctx context.Context, slotID uint, to station.SlotStatus) error {
	sl, ok := r.store.slots[slotID]
	if !ok {
		return station.ErrSlotNotFound
	}
	sl.Status = to
	return nil
}

func (r *fakeStationRepo) CountResidentBatteries(ctx context.Context, stationID uint) (int64, error) {
	var count int64
	for _, b := range r.store.batteries {
		if b.SlotID == nil {
			continue
		}
		if sl, ok := r.store.slots[*b.SlotID]; ok && sl.StationID == stationID {
			count++
		}
	}
	return count, nil
}

// =========================================
// vehicle.Repository
// =========================================

type fakeVehicleRepo struct {
	store *fakeStore
}

func (r *fakeVehicleRepo) FindByID(ctx context.Context, id uint) (*vehicle.Vehicle, error) {
	v, ok := r.store.vehicles[id]
	if !ok {
		return nil, vehicle.ErrVehicleNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVehicleRepo) FindClassByID(ctx context.Context, id uint) (*vehicle.VehicleClass, error) {
	cl, ok := r.store.classes[id]
	if !ok {
		return nil, vehicle.ErrClassNotFound
	}
	cp := *cl
	return &cp, nil
}

// =========================================
// swap.Repository
// =========================================

type fakeSwapRepo struct {
	store *fakeStore
}

func (r *fakeSwapRepo) Create(ctx context.Context, rec *swap.Record) error {
	rec.ID = r.store.nextRecordID
	r.store.nextRecordID++
	cp := *rec
	if rec.BatteryInID != nil {
		v := *rec.BatteryInID
		cp.BatteryInID = &v
	}
	if rec.SOHIn != nil {
		v := *rec.SOHIn
		cp.SOHIn = &v
	}
	r.store.records = append(r.store.records, &cp)
	return nil
}

func (r *fakeSwapRepo) FindPrevHandOut(ctx context.Context, batteryID, vehicleID uint, before time.Time) (*swap.Record, error) {
	var best *swap.Record
	for _, rec := range r.store.records {
		if rec.BatteryOutID != batteryID || rec.VehicleID != vehicleID {
			continue
		}
		if !rec.SwappedAt.Before(before) {
			continue
		}
		if best == nil || rec.SwappedAt.After(best.SwappedAt) {
			best = rec
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (r *fakeSwapRepo) ListByVehicle(ctx context.Context, vehicleID uint, page, pageSize int) ([]*swap.Record, int64, error) {
	var matched []*swap.Record
	for _, rec := range r.store.records {
		if rec.VehicleID == vehicleID {
			cp := *rec
			matched = append(matched, &cp)
		}
	}
	return paginateRecords(matched, page, pageSize)
}

func (r *fakeSwapRepo) ListByDriver(ctx context.Context, driverID uint, page, pageSize int) ([]*swap.Record, int64, error) {
	var matched []*swap.Record
	for _, rec := range r.store.records {
		if rec.DriverID == driverID {
			cp := *rec
			matched = append(matched, &cp)
		}
	}
	return paginateRecords(matched, page, pageSize)
}

func paginateRecords(records []*swap.Record, page, pageSize int) ([]*swap.Record, int64, error) {
	sort.Slice(records, func(i, j int) bool { return records[i].SwappedAt.After(records[j].SwappedAt) })
	total := int64(len(records))
	start := (page - 1) * pageSize
	if start >= len(records) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], total, nil
}

// =========================================
// subscription.Repository
// =========================================

type fakeSubscriptionRepo struct {
	store *fakeStore
}

func (r *fakeSubscriptionRepo) findActive(vehicleID uint) *subscription.Subscription {
	now := time.Now()
	for _, sub := range r.store.subscriptions {
		if sub.VehicleID == vehicleID && sub.IsActive(now) {
			return sub
		}
	}
	return nil
}

func (r *fakeSubscriptionRepo) FindActiveByVehicle(ctx context.Context, vehicleID uint) (*subscription.Subscription, error) {
	sub := r.findActive(vehicleID)
	if sub == nil {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubscriptionRepo) LockActiveByVehicle(ctx context.Context, vehicleID uint) (*subscription.Subscription, error) {
	return r.FindActiveByVehicle(ctx, vehicleID)
}

func (r *fakeSubscriptionRepo) AddUsage(ctx context.Context, id uint, sohDelta, swapCount int) error {
	sub, ok := r.store.subscriptions[id]
	if !ok {
		return subscription.ErrSubscriptionNotFound
	}
	sub.SOHUsage += sohDelta
	sub.SwapCount += swapCount
	return nil
}

// =========================================
// booking.Repository
// =========================================

type fakeBookingRepo struct {
	store *fakeStore
}

func (r *fakeBookingRepo) get(id uint) (*booking.Booking, error) {
	bk, ok := r.store.bookings[id]
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
	bk, ok := r.store.bookings[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	bk.Status = to
	return nil
}
