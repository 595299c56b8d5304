package repository

import (
	"context"
	"time"

	"ecomart/internal/domain/model"
)

type OutboxRepository interface {
	// 注文トランザクションの中からenqueueする
	Enqueue(ctx context.Context, m model.EmailOutbox) error
	// 配信待ちを古い順にlimit件
	ListPending(ctx context.Context, limit int) ([]model.EmailOutbox, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
	// attemptsを進めて失敗を記録。final=trueでFAILED確定。
	MarkFailed(ctx context.Context, id int64, lastError string, final bool) error
}
