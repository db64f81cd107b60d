package swap

import (
	"context"
)

// TxManager 事务边界抽象
// 执行器的全部写入都发生在fn内,fn返回错误则整体回滚
// 生产实现是mysql.TxManager(行锁+有界等待),测试用内存替身
type TxManager interface {
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
