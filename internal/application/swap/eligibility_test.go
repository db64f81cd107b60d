package swap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linhai/battswap/internal/domain/station"
	"github.com/linhai/battswap/internal/domain/swap"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

func TestPreviewEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("按SOC降序返回达标电池", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := NewPreviewEligibilityUseCase(env.stationRepo, env.vehicleRepo, env.selector)

		resp, err := uc.Execute(ctx, PreviewEligibilityRequest{StationID: 1, VehicleID: 1})
		require.NoError(t, err)

		// 203电量89不达标,204在locked仓位,都不出现
		require.Equal(t, 2, resp.Quantity)
		assert.Equal(t, uint(201), resp.Batteries[0].BatteryID)
		assert.Equal(t, uint(202), resp.Batteries[1].BatteryID)
		assert.Equal(t, uint(3), resp.Batteries[0].SlotID)
	})

	t.Run("SOC相同按仓位ID升序", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		env.store.batteries[201].SOC = 92 // 与202持平
		uc := NewPreviewEligibilityUseCase(env.stationRepo, env.vehicleRepo, env.selector)

		resp, err := uc.Execute(ctx, PreviewEligibilityRequest{StationID: 1, VehicleID: 1})
		require.NoError(t, err)
		require.Equal(t, 2, resp.Quantity)
		assert.Equal(t, uint(3), resp.Batteries[0].SlotID)
		assert.Equal(t, uint(4), resp.Batteries[1].SlotID)
	})

	t.Run("充电中的电池电量达标也可出仓", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		env.store.slots[3].Status = station.SlotStatusCharging
		uc := NewPreviewEligibilityUseCase(env.stationRepo, env.vehicleRepo, env.selector)

		resp, err := uc.Execute(ctx, PreviewEligibilityRequest{StationID: 1, VehicleID: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Quantity)
	})

	t.Run("站点不存在", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := NewPreviewEligibilityUseCase(env.stationRepo, env.vehicleRepo, env.selector)

		_, err := uc.Execute(ctx, PreviewEligibilityRequest{StationID: 99, VehicleID: 1})
		require.ErrorIs(t, err, station.ErrStationNotFound)
	})
}

func TestListRecords(t *testing.T) {
	ctx := context.Background()

	seedRecords := func(t *testing.T, env *swapEnv) {
		t.Helper()
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 3; i++ {
			r := swap.NewFirstPickupRecord(swap.GenerateRecordNo(), 10, 1, 1, uint(300+i), 95, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, env.swapRepo.Create(ctx, r))
		}
	}

	t.Run("按车辆分页查询", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		seedRecords(t, env)
		uc := NewListRecordsUseCase(env.swapRepo, env.vehicleRepo)

		resp, err := uc.Execute(ctx, ListRecordsRequest{DriverID: 10, VehicleID: 1, Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Total)
		require.Len(t, resp.Records, 2)
		// 时间降序:最后一条先返回
		assert.Equal(t, uint(302), resp.Records[0].BatteryOutID)
	})

	t.Run("查询他人车辆被拒绝", func(t *testing.T) {
		env := newSwapEnv()
		env.seedStandard()
		uc := NewListRecordsUseCase(env.swapRepo, env.vehicleRepo)

		_, err := uc.Execute(ctx, ListRecordsRequest{DriverID: 99, VehicleID: 1, Page: 1, PageSize: 10})
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
