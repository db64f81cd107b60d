package swap

import (
	"context"

	"github.com/linhai/battswap/internal/domain/swap"
	"github.com/linhai/battswap/internal/domain/vehicle"
	apperrors "github.com/linhai/battswap/pkg/errors"
)

// ListRecordsUseCase 换电历史查询用例
// 按司机或车辆分页查询,时间降序
type ListRecordsUseCase struct {
	swapRepo    swap.Repository
	vehicleRepo vehicle.Repository
}

// NewListRecordsUseCase 创建换电历史查询用例
func NewListRecordsUseCase(swapRepo swap.Repository, vehicleRepo vehicle.Repository) *ListRecordsUseCase {
	return &ListRecordsUseCase{swapRepo: swapRepo, vehicleRepo: vehicleRepo}
}

// ListRecordsRequest 换电历史查询请求
// VehicleID非0时按车辆过滤,否则查司机名下全部记录
type ListRecordsRequest struct {
	DriverID  uint
	VehicleID uint
	Page      int
	PageSize  int
}

// ListRecordsResponse 换电历史查询响应
type ListRecordsResponse struct {
	Records []SwapRecordView `json:"records"`
	Total   int64            `json:"total"`
}

// Execute 执行换电历史查询
func (uc *ListRecordsUseCase) Execute(ctx context.Context, req ListRecordsRequest) (*ListRecordsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	// 按车辆查询时校验车辆归属,防止越权查看他人历史
	if req.VehicleID != 0 {
		v, err := uc.vehicleRepo.FindByID(ctx, req.VehicleID)
		if err != nil {
			return nil, err
		}
		if !v.IsOwnedBy(req.DriverID) {
			return nil, apperrors.ErrForbidden
		}
	}

	var (
		records []*swap.Record
		total   int64
		err     error
	)
	if req.VehicleID != 0 {
		records, total, err = uc.swapRepo.ListByVehicle(ctx, req.VehicleID, page, pageSize)
	} else {
		records, total, err = uc.swapRepo.ListByDriver(ctx, req.DriverID, page, pageSize)
	}
	if err != nil {
		return nil, err
	}

	return &ListRecordsResponse{
		Records: toRecordViews(records),
		Total:   total,
	}, nil
}
