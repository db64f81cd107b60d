package swap

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateRecordNo 生成换电单号
// 设计原则:
// 1. 全局唯一(避免冲突)
// 2. 时间有序(便于分库分表)
// 3. 不可预测(防止恶意遍历)
//
// 格式:SWP + 时间戳(秒) + 6位随机数
// 示例:SWP1699248000123456
func GenerateRecordNo() string {
	timestamp := time.Now().Unix()
	random := rand.Intn(1000000) // 6位随机数
	return fmt.Sprintf("SWP%d%06d", timestamp, random)
}
