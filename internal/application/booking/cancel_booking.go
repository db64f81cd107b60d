package booking

import (
	"context"

	"github.com/linhai/battswap/internal/domain/booking"
	"github.com/linhai/battswap/internal/domain/station"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// CancelBookingUseCase 取消预约用例
// 设计说明:
// 1. 预约的创建与超时扫描属于预约子系统,但仓位状态只允许
//    换电核心写入,所以解锁动作落在这里
// 2. 取消 = 预约置cancelled + 锁定仓位locked→charged,同一事务提交
// 3. 预约单先锁后改,与并发核销(预约换电)互斥:
//    谁先拿到锁谁生效,后到的按状态机规则被拒绝
type CancelBookingUseCase struct {
	bookingRepo booking.Repository
	stationRepo station.Repository
	txManager   TxManager
}

// NewCancelBookingUseCase 创建取消预约用例
func NewCancelBookingUseCase(
	bookingRepo booking.Repository,
	stationRepo station.Repository,
	txManager TxManager,
) *CancelBookingUseCase {
	return &CancelBookingUseCase{
		bookingRepo: bookingRepo,
		stationRepo: stationRepo,
		txManager:   txManager,
	}
}

// CancelBookingRequest 取消预约请求
type CancelBookingRequest struct {
	BookingID uint
	DriverID  uint // 从JWT中提取
}

// CancelBookingResponse 取消预约响应
type CancelBookingResponse struct {
	BookingID uint   `json:"booking_id"`
	Status    string `json:"status"`
}

// Execute 执行取消预约
func (uc *CancelBookingUseCase) Execute(ctx context.Context, req CancelBookingRequest) (*CancelBookingResponse, error) {
	var bk *booking.Booking
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		bk, err = uc.bookingRepo.LockByID(txCtx, req.BookingID)
		if err != nil {
			return err
		}
		if bk.DriverID != req.DriverID {
			return apperrors.ErrForbidden
		}

		if err := bk.Cancel(); err != nil {
			return err
		}

		// 释放预约锁定的仓位:locked → charged
		slotIDs := make([]uint, len(bk.Batteries))
		for i, bb := range bk.Batteries {
			slotIDs[i] = bb.SlotID
		}
		slots, err := uc.stationRepo.LockSlotsByIDs(txCtx, slotIDs)
		if err != nil {
			return err
		}
		for _, slot := range slots {
			// 电池已被运维移走的仓位不在locked态,保持原状
			if slot.Status != station.SlotStatusLocked {
				continue
			}
			if err := slot.MarkStatus(station.SlotStatusCharged); err != nil {
				return err
			}
			if err := uc.stationRepo.UpdateSlotStatus(txCtx, slot.ID, slot.Status); err != nil {
				return err
			}
		}

		return uc.bookingRepo.UpdateStatus(txCtx, bk.ID, bk.Status)
	})

	if err != nil {
		return nil, err
	}

	return &CancelBookingResponse{
		BookingID: bk.ID,
		Status:    string(bk.Status),
	}, nil
}
