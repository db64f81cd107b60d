package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbooking "github.com/linhai/battswap/internal/application/booking"
	"github.com/linhai/battswap/internal/interface/http/dto"
	"github.com/linhai/battswap/internal/interface/http/middleware"
	apperrors "github.com/linhai/battswap/pkg/errors"
	"github.com/linhai/battswap/pkg/response"
)

// BookingHandler 预约HTTP处理器
type BookingHandler struct {
	cancelUseCase *appbooking.CancelBookingUseCase
}

// NewBookingHandler 创建预约处理器
func NewBookingHandler(cancelUseCase *appbooking.CancelBookingUseCase) *BookingHandler {
	return &BookingHandler{cancelUseCase: cancelUseCase}
}

// CancelBooking 取消预约
// @Summary      取消预约
// @Description  取消生效中的预约并解锁预约占用的仓位
// @Tags         预约模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=dto.CancelBookingResponse}
// @Failure      40007 {object} response.Response "预约状态不允许此操作"
// @Router       /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, apperrors.ErrInvalidParams)
		return
	}

	result, err := h.cancelUseCase.Execute(c.Request.Context(), appbooking.CancelBookingRequest{
		BookingID: uint(bookingID),
		DriverID:  middleware.MustGetDriverID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.CancelBookingResponse{
		BookingID: result.BookingID,
		Status:    result.Status,
	})
}
