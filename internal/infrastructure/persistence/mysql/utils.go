package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为唯一索引冲突(MySQL错误码1062)。
// 电池表的slot_id带唯一索引,入仓时撞上该冲突说明目标仓位已被占用,
// 调用方据此转换为仓位非空的业务错误。
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 部分驱动版本不翻译成gorm.ErrDuplicatedKey,退化为报文匹配
	return strings.Contains(err.Error(), "Duplicate entry")
}
