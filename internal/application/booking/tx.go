package booking

import (
	"context"
)

// TxManager 事务边界抽象,生产实现是mysql.TxManager
type TxManager interface {
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
