package swap

import (
	"context"

	"github.com/linhai/battswap/internal/domain/battery"
)

// EligibilitySelector 选仓器:返回站点内可出仓的电池
// 设计说明:
// 1. 候选条件:本站非locked且有电池的仓位、型号匹配、SOC>=阈值
// 2. 排序:SOC降序,仓位ID升序,结果确定可复现
// 3. 只读组件,不做任何写入;lock=false的结果是快照,
//    执行器必须在事务内用lock=true重新选仓后才能动手(见执行器)
type EligibilitySelector struct {
	batteryRepo battery.Repository
}

// NewEligibilitySelector 创建选仓器
func NewEligibilitySelector(batteryRepo battery.Repository) *EligibilitySelector {
	return &EligibilitySelector{batteryRepo: batteryRepo}
}

// Select 选出最多quantity块可出仓电池
// 返回数量可能少于quantity,是否视为缺货由调用方决定
func (s *EligibilitySelector) Select(ctx context.Context, stationID, classID uint, quantity int, lock bool) ([]*battery.Battery, error) {
	if quantity <= 0 {
		return nil, nil
	}
	return s.batteryRepo.FindEligibleAtStation(ctx, stationID, classID, quantity, lock)
}
