package swap

import (
	"context"

	"github.com/linhai/battswap/internal/domain/subscription"
	"github.com/linhai/battswap/internal/domain/swap"
)

// UsageAccountant 用量核算:从换电记录推导套餐计量
// 设计说明:
// 1. 对每块归还电池,回查它上一次作为发出电池、同一车辆的记录,
//    差值 = 上次发出时SOH - 本次归还时SOH,即这块电池在车上损耗的健康度
// 2. 差值理论上非负,但负值(传感器噪声导致"越用越健康")照常累加,
//    不做拒绝,与上游计量口径保持一致
// 3. 无生效套餐时静默跳过,换电照常完成,只是不计费
// 4. 必须在执行器事务内调用:先锁套餐行再累加,
//    并发换电的计数器更新不会互相覆盖
type UsageAccountant struct {
	swapRepo         swap.Repository
	subscriptionRepo subscription.Repository
}

// NewUsageAccountant 创建用量核算器
func NewUsageAccountant(swapRepo swap.Repository, subscriptionRepo subscription.Repository) *UsageAccountant {
	return &UsageAccountant{
		swapRepo:         swapRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

// Apply 结算一次换电产生的用量
// records是本次换电刚创建的记录,首次领电记录(无归还侧)不产生差值
func (a *UsageAccountant) Apply(ctx context.Context, vehicleID uint, records []*swap.Record) error {
	if len(records) == 0 {
		return nil
	}

	sub, err := a.subscriptionRepo.LockActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil // 无生效套餐,不计费
	}

	totalDelta := 0
	for _, r := range records {
		if r.IsFirstPickup() {
			continue
		}

		prev, err := a.swapRepo.FindPrevHandOut(ctx, *r.BatteryInID, vehicleID, r.SwappedAt)
		if err != nil {
			return err
		}
		if prev == nil {
			// 这块电池没有本车的发出历史(如调拨上车),无法求差
			continue
		}

		totalDelta += prev.SOHOut - *r.SOHIn
	}

	return a.subscriptionRepo.AddUsage(ctx, sub.ID, totalDelta, len(records))
}
