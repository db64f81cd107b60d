package swap

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/swap"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

func newExchangeUseCase(env *swapEnv) *ExecuteExchangeUseCase {
	return NewExecuteExchangeUseCase(
		env.vehicleRepo, env.batteryRepo, env.stationRepo, env.swapRepo,
		env.selector, env.accountant, env.txManager, nil,
	)
}

func TestExecuteExchange(t *testing.T) {
	ctx := context.Background()

	t.Run("两块电池全量交换", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := newExchangeUseCase(env)
		before := env.residentCount(1)

		resp, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			HandIns: []HandInPair{
				{SlotID: 1, BatteryID: 101},
				{SlotID: 2, BatteryID: 102},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.BatteriesOut, 2)
		require.Len(t, resp.Records, 2)

		// 选仓按SOC降序:201(95) -> 202(92)
		assert.Equal(t, uint(201), resp.BatteriesOut[0].BatteryID)
		assert.Equal(t, uint(202), resp.BatteriesOut[1].BatteryID)

		// 归还电池入仓,仓位状态按SOH分流:40 -> charging,10 -> faulty
		assert.Equal(t, station.SlotStatusCharging, env.store.slots[1].Status)
		assert.Equal(t, station.SlotStatusFaulty, env.store.slots[2].Status)
		assert.Equal(t, uint(1), *env.store.batteries[101].SlotID)
		assert.Equal(t, uint(2), *env.store.batteries[102].SlotID)

		// 发出电池挂车,来源仓位清空
		assert.Equal(t, uint(1), *env.store.batteries[201].VehicleID)
		assert.Equal(t, uint(1), *env.store.batteries[202].VehicleID)
		assert.Equal(t, station.SlotStatusEmpty, env.store.slots[3].Status)
		assert.Equal(t, station.SlotStatusEmpty, env.store.slots[4].Status)

		// 记录配对:归还101对发出201,归还102对发出202
		require.Len(t, env.store.records, 2)
		assert.Equal(t, uint(101), *env.store.records[0].BatteryInID)
		assert.Equal(t, uint(201), env.store.records[0].BatteryOutID)
		assert.Equal(t, 40, *env.store.records[0].SOHIn)
		assert.Equal(t, 98, env.store.records[0].SOHOut)
		assert.Equal(t, uint(102), *env.store.records[1].BatteryInID)
		assert.Equal(t, uint(202), env.store.records[1].BatteryOutID)

		// 无在先发出记录,本单只累加次数
		assert.Equal(t, 0, env.store.subscriptions[1].SOHUsage)
		assert.Equal(t, 2, env.store.subscriptions[1].SwapCount)

		// 站点在仓电池数守恒:收二发二
		assert.Equal(t, before, env.residentCount(1))
		env.assertInvariants(t)
	})

	t.Run("满电电池不足整单回滚", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		// 只留一块达标电池
		delete(env.store.batteries, 202)
		env.store.slots[4].Status = station.SlotStatusEmpty
		uc := newExchangeUseCase(env)
		snapshot := env.store.clone()

		_, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			HandIns: []HandInPair{
				{SlotID: 1, BatteryID: 101},
				{SlotID: 2, BatteryID: 102},
			},
		})
		require.ErrorIs(t, err, swap.ErrInsufficientStock)

		// 失败后状态与调用前完全一致
		assert.True(t, reflect.DeepEqual(snapshot.batteries, env.store.batteries))
		assert.True(t, reflect.DeepEqual(snapshot.slots, env.store.slots))
		assert.Empty(t, env.store.records)
		assert.Equal(t, 0, env.store.subscriptions[1].SwapCount)
		env.assertInvariants(t)
	})

	t.Run("电量89的电池不参与选仓", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		// 202不可用后,站内达标的只剩201(203电量89,204在locked仓)
		delete(env.store.batteries, 202)
		env.store.slots[4].Status = station.SlotStatusEmpty
		uc := newExchangeUseCase(env)

		resp, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			HandIns:   []HandInPair{{SlotID: 1, BatteryID: 101}},
		})
		require.NoError(t, err)
		require.Len(t, resp.BatteriesOut, 1)
		assert.Equal(t, uint(201), resp.BatteriesOut[0].BatteryID)

		// 203/204原地未动
		assert.Equal(t, uint(5), *env.store.batteries[203].SlotID)
		assert.Equal(t, uint(6), *env.store.batteries[204].SlotID)
		env.assertInvariants(t)
	})

	t.Run("归还别人车上的电池", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		env.store.vehicles[2] = cloneVehicle(env.store.vehicles[1], 2, 20)
		vid := uint(2)
		env.store.batteries[102].VehicleID = &vid
		uc := newExchangeUseCase(env)

		_, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			HandIns:   []HandInPair{{SlotID: 1, BatteryID: 102}},
		})
		require.ErrorIs(t, err, swap.ErrBatteryNotOwned)
		assert.Empty(t, env.store.records)
		env.assertInvariants(t)
	})

	t.Run("目标仓位非空", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := newExchangeUseCase(env)

		_, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			HandIns:   []HandInPair{{SlotID: 3, BatteryID: 101}},
		})
		require.ErrorIs(t, err, swap.ErrSlotNotAvailable)
		env.assertInvariants(t)
	})

	t.Run("数量超过车型仓数", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := newExchangeUseCase(env)

		_, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			HandIns: []HandInPair{
				{SlotID: 1, BatteryID: 101},
				{SlotID: 2, BatteryID: 102},
				{SlotID: 4, BatteryID: 103},
			},
		})
		require.ErrorIs(t, err, swap.ErrQuantityMismatch)
	})

	t.Run("同一电池重复归还整单拒绝", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := newExchangeUseCase(env)
		snapshot := env.store.clone()

		// 一块电池填进两个仓位,放行会一还多换
		_, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			HandIns: []HandInPair{
				{SlotID: 1, BatteryID: 101},
				{SlotID: 2, BatteryID: 101},
			},
		})
		require.ErrorIs(t, err, swap.ErrBatteryNotOwned)

		assert.True(t, reflect.DeepEqual(snapshot.batteries, env.store.batteries))
		assert.True(t, reflect.DeepEqual(snapshot.slots, env.store.slots))
		assert.Empty(t, env.store.records)
		env.assertInvariants(t)
	})

	t.Run("同一仓位重复归还整单拒绝", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := newExchangeUseCase(env)

		_, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  10,
			VehicleID: 1,
			StationID: 1,
			HandIns: []HandInPair{
				{SlotID: 1, BatteryID: 101},
				{SlotID: 1, BatteryID: 102},
			},
		})
		require.ErrorIs(t, err, swap.ErrSlotNotAvailable)
		assert.Empty(t, env.store.records)
		env.assertInvariants(t)
	})

	t.Run("非车主操作被拒绝", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := newExchangeUseCase(env)

		_, err := uc.Execute(ctx, ExecuteExchangeRequest{
			DriverID:  99,
			VehicleID: 1,
			StationID: 1,
			HandIns:   []HandInPair{{SlotID: 1, BatteryID: 101}},
		})
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
