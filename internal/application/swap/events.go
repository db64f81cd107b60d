package swap

import (
	"log"
	"time"

	"github.com/linhai/battswap/pkg/mq"
)

// 换电事件路由键(topic交换机battswap.events)
const (
	RoutingKeySwapCompleted   = "swap.completed"
	RoutingKeySwapFirstPickup = "swap.first_pickup"
)

// SwapCompletedEvent 换电完成事件
// 事务提交后发布,供计费、通知等下游消费
type SwapCompletedEvent struct {
	RecordNos []string  `json:"record_nos"`
	DriverID  uint      `json:"driver_id"`
	VehicleID uint      `json:"vehicle_id"`
	StationID uint      `json:"station_id"`
	Quantity  int       `json:"quantity"`
	BookingID uint      `json:"booking_id,omitempty"` // 预约换电时携带
	SwappedAt time.Time `json:"swapped_at"`
}

// publishEvent 发布换电事件(尽力而为)
// publisher为nil表示MQ未启用;发布失败只记日志,
// 换电事务已提交,事实以数据库为准
func publishEvent(publisher *mq.Publisher, routingKey string, event interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(routingKey, event); err != nil {
		log.Printf("换电事件发布失败: key=%s, err=%v", routingKey, err)
	}
}
