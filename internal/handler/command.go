package handler

import (
	"context"
	"strings"

	"ledgerbot/internal/amount"
	"ledgerbot/internal/domain"

	"go.uber.org/zap"
)

// oneShot records "<gasto|ingreso> <amount> [category] [detail...]" without the menu
func (h *Handler) oneShot(ctx context.Context, sub *domain.Subscriber, kind domain.Kind, input string) string {
	fields := strings.Fields(input)
	if len(fields) < 2 {
		return invalidOneShotText()
	}

	value, err := amount.Parse(fields[1])
	if err != nil {
		return invalidOneShotText()
	}

	category := kind.DefaultCategory()
	if len(fields) > 2 {
		category = fields[2]
	}
	var detail string
	if len(fields) > 3 {
		detail = strings.Join(fields[3:], " ")
	}

	tx, err := h.ledgerService.Record(ctx, sub.LedgerID, kind, category, value, detail)
	if err != nil {
		h.logger.Error("Failed to record one-shot transaction",
			zap.Error(err),
			zap.String("phone", sub.Phone),
			zap.String("ledger_id", sub.LedgerID),
			zap.String("kind", string(kind)),
		)
		return textAppendFailed
	}

	h.logger.Info("Transaction recorded",
		zap.String("phone", sub.Phone),
		zap.String("ledger_id", sub.LedgerID),
		zap.String("id", tx.ID),
	)
	return recordedText(tx)
}

func (h *Handler) recent(ctx context.Context, sub *domain.Subscriber) string {
	txs, err := h.ledgerService.Recent(ctx, sub.LedgerID, h.opts.RecentLimit)
	if err != nil {
		h.logger.Error("Failed to read movements", zap.Error(err), zap.String("ledger_id", sub.LedgerID))
		return textMovementsFailed
	}
	if len(txs) == 0 {
		return textNoMovements
	}
	return movementsText(txs)
}
