package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appswap "github.com/linhai/battswap/internal/application/swap"
	"github.com/linhai/battswap/internal/interface/http/dto"
	"github.com/linhai/battswap/internal/interface/http/middleware"
	apperrors "github.com/linhai/battswap/pkg/errors"
	"github.com/linhai/battswap/pkg/response"
)

// SwapHandler 换电HTTP处理器
type SwapHandler struct {
	previewUseCase     *appswap.PreviewEligibilityUseCase
	validateUseCase    *appswap.ValidateExchangeUseCase
	exchangeUseCase    *appswap.ExecuteExchangeUseCase
	bookingUseCase     *appswap.ExecuteBookingExchangeUseCase
	firstPickupUseCase *appswap.ExecuteFirstPickupUseCase
	listUseCase        *appswap.ListRecordsUseCase
}

// NewSwapHandler 创建换电处理器
func NewSwapHandler(
	previewUseCase *appswap.PreviewEligibilityUseCase,
	validateUseCase *appswap.ValidateExchangeUseCase,
	exchangeUseCase *appswap.ExecuteExchangeUseCase,
	bookingUseCase *appswap.ExecuteBookingExchangeUseCase,
	firstPickupUseCase *appswap.ExecuteFirstPickupUseCase,
	listUseCase *appswap.ListRecordsUseCase,
) *SwapHandler {
	return &SwapHandler{
		previewUseCase:     previewUseCase,
		validateUseCase:    validateUseCase,
		exchangeUseCase:    exchangeUseCase,
		bookingUseCase:     bookingUseCase,
		firstPickupUseCase: firstPickupUseCase,
		listUseCase:        listUseCase,
	}
}

// PreviewEligibility 选仓预览
// @Summary      选仓预览
// @Description  查询站点内可发给本车的满电电池(咨询性结果,不做预留)
// @Tags         换电模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "站点ID"
// @Param        vehicle_id query int true "车辆ID"
// @Success      200 {object} response.Response{data=dto.EligibilityResponse}
// @Failure      404 {object} response.Response "站点或车辆不存在"
// @Router       /stations/{id}/eligibility [get]
func (h *SwapHandler) PreviewEligibility(c *gin.Context) {
	stationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, apperrors.ErrInvalidParams)
		return
	}
	vehicleID, err := strconv.ParseUint(c.Query("vehicle_id"), 10, 32)
	if err != nil {
		response.Error(c, apperrors.ErrInvalidParams)
		return
	}

	result, err := h.previewUseCase.Execute(c.Request.Context(), appswap.PreviewEligibilityRequest{
		StationID: uint(stationID),
		VehicleID: uint(vehicleID),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.EligibilityItem, len(result.Batteries))
	for i, b := range result.Batteries {
		items[i] = dto.EligibilityItem{
			BatteryID: b.BatteryID,
			SerialNo:  b.SerialNo,
			SlotID:    b.SlotID,
			SOC:       b.SOC,
			SOH:       b.SOH,
		}
	}
	response.Success(c, &dto.EligibilityResponse{
		StationID: result.StationID,
		Quantity:  result.Quantity,
		Batteries: items,
	})
}

// ValidateExchange 换电校验
// @Summary      换电校验
// @Description  逐项校验归还仓位与电池,返回每项的结论与入仓后仓位状态
// @Tags         换电模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ValidateExchangeRequest true "校验请求"
// @Success      200 {object} response.Response{data=dto.ValidateExchangeResponse}
// @Failure      40003 {object} response.Response "交换数量不匹配"
// @Router       /swaps/validate [post]
func (h *SwapHandler) ValidateExchange(c *gin.Context) {
	var req dto.ValidateExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.validateUseCase.Execute(c.Request.Context(), appswap.ValidateExchangeRequest{
		DriverID:          middleware.MustGetDriverID(c),
		VehicleID:         req.VehicleID,
		StationID:         req.StationID,
		RequestedQuantity: req.Quantity,
		HandIns:           toHandInPairs(req.HandIns),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ValidateItemResult, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.ValidateItemResult{
			SlotID:     item.SlotID,
			BatteryID:  item.BatteryID,
			Valid:      item.Valid,
			Reason:     item.Reason,
			Message:    item.Message,
			PostStatus: item.PostStatus,
		}
	}
	response.Success(c, &dto.ValidateExchangeResponse{
		AllValid: result.AllValid,
		Items:    items,
	})
}

// ExecuteExchange 即换换电
// @Summary      即换换电
// @Description  无预约换电:归还电池入仓、按SOC选出满电电池发车,整单事务提交
// @Tags         换电模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ExecuteExchangeRequest true "换电请求"
// @Success      200 {object} response.Response{data=dto.ExecuteExchangeResponse}
// @Failure      40004 {object} response.Response "站点满电电池不足"
// @Router       /swaps/exchange [post]
func (h *SwapHandler) ExecuteExchange(c *gin.Context) {
	var req dto.ExecuteExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.exchangeUseCase.Execute(c.Request.Context(), appswap.ExecuteExchangeRequest{
		DriverID:  middleware.MustGetDriverID(c),
		VehicleID: req.VehicleID,
		StationID: req.StationID,
		HandIns:   toHandInPairs(req.HandIns),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ExecuteExchangeResponse{
		BatteriesOut: toBatteryOutItems(result.BatteriesOut),
		Records:      toRecordItems(result.Records),
	})
}

// ExecuteBookingExchange 预约换电
// @Summary      预约换电
// @Description  核销预约:发出预约锁定的电池,成功后预约置completed
// @Tags         换电模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Param        request body dto.BookingExchangeRequest true "换电请求"
// @Success      200 {object} response.Response{data=dto.BookingExchangeResponse}
// @Failure      40007 {object} response.Response "预约状态不允许此操作"
// @Failure      40005 {object} response.Response "预约电池已不可用"
// @Router       /bookings/{id}/exchange [post]
func (h *SwapHandler) ExecuteBookingExchange(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, apperrors.ErrInvalidParams)
		return
	}
	var req dto.BookingExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.bookingUseCase.Execute(c.Request.Context(), appswap.ExecuteBookingExchangeRequest{
		BookingID: uint(bookingID),
		DriverID:  middleware.MustGetDriverID(c),
		VehicleID: req.VehicleID,
		StationID: req.StationID,
		HandIns:   toHandInPairs(req.HandIns),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BookingExchangeResponse{
		BookingStatus: result.BookingStatus,
		BatteriesOut:  toBatteryOutItems(result.BatteriesOut),
		Records:       toRecordItems(result.Records),
	})
}

// ExecuteFirstPickup 首次领电
// @Summary      首次领电
// @Description  新车开通后首次领取电池,只出不进,不计套餐用量
// @Tags         换电模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.FirstPickupRequest true "领电请求"
// @Success      200 {object} response.Response{data=dto.FirstPickupResponse}
// @Failure      40003 {object} response.Response "车上已有电池或数量超限"
// @Router       /swaps/first-pickup [post]
func (h *SwapHandler) ExecuteFirstPickup(c *gin.Context) {
	var req dto.FirstPickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.firstPickupUseCase.Execute(c.Request.Context(), appswap.ExecuteFirstPickupRequest{
		DriverID:      middleware.MustGetDriverID(c),
		VehicleID:     req.VehicleID,
		StationID:     req.StationID,
		BatteryOutIDs: req.BatteryIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.FirstPickupResponse{
		BatteriesOut: toBatteryOutItems(result.BatteriesOut),
		Records:      toRecordItems(result.Records),
	})
}

// ListRecords 换电历史
// @Summary      换电历史
// @Description  分页查询当前司机(可按车辆过滤)的换电记录,时间降序
// @Tags         换电模块
// @Produce      json
// @Security     BearerAuth
// @Param        vehicle_id query int false "车辆ID"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页条数"
// @Success      200 {object} response.Response{data=dto.ListRecordsResponse}
// @Router       /swaps/records [get]
func (h *SwapHandler) ListRecords(c *gin.Context) {
	var req dto.ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appswap.ListRecordsRequest{
		DriverID:  middleware.MustGetDriverID(c),
		VehicleID: req.VehicleID,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ListRecordsResponse{
		Records: toRecordItems(result.Records),
		Total:   result.Total,
	})
}

func toHandInPairs(items []dto.HandInItem) []appswap.HandInPair {
	pairs := make([]appswap.HandInPair, len(items))
	for i, item := range items {
		pairs[i] = appswap.HandInPair{SlotID: item.SlotID, BatteryID: item.BatteryID}
	}
	return pairs
}

func toBatteryOutItems(outs []appswap.BatteryOut) []dto.BatteryOutItem {
	items := make([]dto.BatteryOutItem, len(outs))
	for i, b := range outs {
		items[i] = dto.BatteryOutItem{
			BatteryID: b.BatteryID,
			SerialNo:  b.SerialNo,
			SOC:       b.SOC,
			SOH:       b.SOH,
		}
	}
	return items
}

func toRecordItems(records []appswap.SwapRecordView) []dto.SwapRecordItem {
	items := make([]dto.SwapRecordItem, len(records))
	for i, r := range records {
		items[i] = dto.SwapRecordItem{
			RecordNo:     r.RecordNo,
			BatteryInID:  r.BatteryInID,
			BatteryOutID: r.BatteryOutID,
			SOHIn:        r.SOHIn,
			SOHOut:       r.SOHOut,
			SwappedAt:    r.SwappedAt,
		}
	}
	return items
}
