package mail

import "context"

// メール配信の窓口。outbox workerから呼ばれる。
type Sender interface {
	Send(ctx context.Context, to string, subject string, body string) error
}
