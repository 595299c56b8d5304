package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ecomart/internal/mail"
	repo "ecomart/internal/repository"
)

const (
	defaultInterval  = 10 * time.Second
	defaultBatchSize = 20
	maxAttempts      = 5
)

// OutboxWorker はemail_outboxのPENDINGを拾ってSMTPで配る。
// 配信失敗はattemptsを進めて後続のtickで再挑戦し、上限に達したらFAILEDで確定。
// 注文処理とは完全に切り離されていて、ここでの失敗が注文に波及することはない。
type OutboxWorker struct {
	outboxRepo repo.OutboxRepository
	sender     mail.Sender
	logger     zerolog.Logger
	interval   time.Duration
	batchSize  int
}

// DI
func NewOutboxWorker(outboxRepo repo.OutboxRepository, sender mail.Sender, logger zerolog.Logger) *OutboxWorker {
	return &OutboxWorker{
		outboxRepo: outboxRepo,
		sender:     sender,
		logger:     logger,
		interval:   defaultInterval,
		batchSize:  defaultBatchSize,
	}
}

// Run はctxが閉じるまでtickごとに1バッチ処理する。goroutineで呼ぶ。
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("outbox worker stopped")
			return
		case <-ticker.C:
			w.deliverBatch(ctx)
		}
	}
}

func (w *OutboxWorker) deliverBatch(ctx context.Context) {
	mails, err := w.outboxRepo.ListPending(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("outbox list failed")
		return
	}

	for _, m := range mails {
		if err := w.sender.Send(ctx, m.Recipient, m.Subject, m.Body); err != nil {
			final := m.Attempts+1 >= maxAttempts
			if markErr := w.outboxRepo.MarkFailed(ctx, m.ID, err.Error(), final); markErr != nil {
				w.logger.Error().Err(markErr).Int64("id", m.ID).Msg("outbox mark failed")
			}
			w.logger.Warn().Err(err).
				Int64("id", m.ID).
				Str("recipient", m.Recipient).
				Bool("final", final).
				Msg("mail delivery failed")
			continue
		}

		if err := w.outboxRepo.MarkSent(ctx, m.ID, time.Now()); err != nil {
			w.logger.Error().Err(err).Int64("id", m.ID).Msg("outbox mark sent failed")
		}
	}
}
