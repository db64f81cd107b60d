package dto

// HandInItem 归还项:把哪块电池放进哪个空仓
type HandInItem struct {
	SlotID    uint `json:"slot_id" binding:"required" example:"1"`
	BatteryID uint `json:"battery_id" binding:"required" example:"101"`
}

// ValidateExchangeRequest HTTP换电校验请求
type ValidateExchangeRequest struct {
	VehicleID uint         `json:"vehicle_id" binding:"required" example:"1"`
	StationID uint         `json:"station_id" binding:"required" example:"1"`
	Quantity  int          `json:"quantity" binding:"required,min=1,max=8" example:"2"`
	HandIns   []HandInItem `json:"hand_ins" binding:"required,min=1,dive"`
}

// ValidateItemResult 单项校验结果
type ValidateItemResult struct {
	SlotID     uint   `json:"slot_id" example:"1"`
	BatteryID  uint   `json:"battery_id" example:"101"`
	Valid      bool   `json:"valid" example:"true"`
	Reason     int    `json:"reason,omitempty" example:"40001"`
	Message    string `json:"message,omitempty" example:"电池不属于该车辆"`
	PostStatus string `json:"post_status,omitempty" example:"charging"`
}

// ValidateExchangeResponse HTTP换电校验响应
type ValidateExchangeResponse struct {
	AllValid bool                 `json:"all_valid" example:"true"`
	Items    []ValidateItemResult `json:"items"`
}

// ExecuteExchangeRequest HTTP即换换电请求
// 交换数量就是归还项数,不单独传
type ExecuteExchangeRequest struct {
	VehicleID uint         `json:"vehicle_id" binding:"required" example:"1"`
	StationID uint         `json:"station_id" binding:"required" example:"1"`
	HandIns   []HandInItem `json:"hand_ins" binding:"required,min=1,dive"`
}

// BatteryOutItem 发出电池项
type BatteryOutItem struct {
	BatteryID uint   `json:"battery_id" example:"201"`
	SerialNo  string `json:"serial_no" example:"BAT-201"`
	SOC       int    `json:"soc" example:"95"`
	SOH       int    `json:"soh" example:"98"`
}

// SwapRecordItem 换电记录项
type SwapRecordItem struct {
	RecordNo     string `json:"record_no" example:"SWP1699248000123456"`
	BatteryInID  *uint  `json:"battery_in_id,omitempty" example:"101"`
	BatteryOutID uint   `json:"battery_out_id" example:"201"`
	SOHIn        *int   `json:"soh_in,omitempty" example:"40"`
	SOHOut       int    `json:"soh_out" example:"98"`
	SwappedAt    string `json:"swapped_at" example:"2024-11-06 10:30:00"`
}

// ExecuteExchangeResponse HTTP即换换电响应
type ExecuteExchangeResponse struct {
	BatteriesOut []BatteryOutItem `json:"batteries_out"`
	Records      []SwapRecordItem `json:"records"`
}

// BookingExchangeRequest HTTP预约换电请求
// 预约ID走路由参数,发出电池由预约锁定的明细决定
type BookingExchangeRequest struct {
	VehicleID uint         `json:"vehicle_id" binding:"required" example:"1"`
	StationID uint         `json:"station_id" binding:"required" example:"1"`
	HandIns   []HandInItem `json:"hand_ins" binding:"required,min=1,dive"`
}

// BookingExchangeResponse HTTP预约换电响应
type BookingExchangeResponse struct {
	BookingStatus string           `json:"booking_status" example:"completed"`
	BatteriesOut  []BatteryOutItem `json:"batteries_out"`
	Records       []SwapRecordItem `json:"records"`
}

// FirstPickupRequest HTTP首次领电请求
type FirstPickupRequest struct {
	VehicleID  uint   `json:"vehicle_id" binding:"required" example:"2"`
	StationID  uint   `json:"station_id" binding:"required" example:"1"`
	BatteryIDs []uint `json:"battery_ids" binding:"required,min=1" example:"204"`
}

// FirstPickupResponse HTTP首次领电响应
type FirstPickupResponse struct {
	BatteriesOut []BatteryOutItem `json:"batteries_out"`
	Records      []SwapRecordItem `json:"records"`
}

// EligibilityItem 可出仓电池项
type EligibilityItem struct {
	BatteryID uint   `json:"battery_id" example:"201"`
	SerialNo  string `json:"serial_no" example:"BAT-201"`
	SlotID    uint   `json:"slot_id" example:"3"`
	SOC       int    `json:"soc" example:"95"`
	SOH       int    `json:"soh" example:"98"`
}

// EligibilityResponse HTTP选仓预览响应
type EligibilityResponse struct {
	StationID uint              `json:"station_id" example:"1"`
	Quantity  int               `json:"quantity" example:"2"`
	Batteries []EligibilityItem `json:"batteries"`
}

// ListRecordsRequest HTTP换电历史查询请求
type ListRecordsRequest struct {
	VehicleID uint `form:"vehicle_id" binding:"omitempty" example:"1"`
	Page      int  `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize  int  `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// ListRecordsResponse HTTP换电历史查询响应
type ListRecordsResponse struct {
	Records []SwapRecordItem `json:"records"`
	Total   int64            `json:"total" example:"42"`
}

// CancelBookingResponse HTTP取消预约响应
type CancelBookingResponse struct {
	BookingID uint   `json:"booking_id" example:"1"`
	Status    string `json:"status" example:"cancelled"`
}
