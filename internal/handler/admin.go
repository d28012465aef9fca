package handler

import (
	"context"
	"errors"
	"strings"

	"ledgerbot/internal/domain"

	"go.uber.org/zap"
)

const adminKeyword = "admin"

type adminOp int

const (
	adminHelp adminOp = iota
	adminAuthorize
	adminDeauthorize
	adminStatus
)

var adminVerbs = map[string]adminOp{
	"help":         adminHelp,
	"ayuda":        adminHelp,
	"authorize":    adminAuthorize,
	"autorizar":    adminAuthorize,
	"deauthorize":  adminDeauthorize,
	"desautorizar": adminDeauthorize,
	"status":       adminStatus,
	"estado":       adminStatus,
}

// isAdminCommand reports whether text is meant for the admin handler.
// Bare verbs stay with the conversation, so "Estado civil" can name a category.
func isAdminCommand(text string) bool {
	return firstWord(text) == adminKeyword
}

// handleAdmin runs one admin command. Directory failures become a generic reply.
func (h *Handler) handleAdmin(ctx context.Context, text string) []string {
	fields := strings.Fields(text)[1:]
	if len(fields) == 0 {
		return []string{adminHelpText()}
	}

	op, ok := adminVerbs[strings.ToLower(fields[0])]
	if !ok {
		return []string{textAdminUnknownOp + "\n\n" + adminHelpText()}
	}
	if op == adminHelp {
		return []string{adminHelpText()}
	}

	arg := strings.Join(fields[1:], "")
	if arg == "" {
		return []string{textAdminNoPhone}
	}

	switch op {
	case adminAuthorize:
		p, err := h.subscriberService.Authorize(ctx, arg)
		if err != nil {
			return []string{h.adminError("authorize", arg, err)}
		}
		h.logger.Info("Subscriber authorized", zap.String("phone", p))
		return []string{"✅ Teléfono " + p + " quedó AUTORIZADO."}

	case adminDeauthorize:
		p, err := h.subscriberService.Deauthorize(ctx, arg)
		if err != nil {
			return []string{h.adminError("deauthorize", arg, err)}
		}
		h.logger.Info("Subscriber deauthorized", zap.String("phone", p))
		return []string{"⛔ Teléfono " + p + " marcado como NO AUTORIZADO."}

	default:
		sub, err := h.subscriberService.Status(ctx, arg)
		if err != nil {
			return []string{h.adminError("status", arg, err)}
		}
		return []string{statusText(sub)}
	}
}

func (h *Handler) adminError(op, arg string, err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPhone):
		return textAdminBadPhone
	case errors.Is(err, domain.ErrNotFound):
		return textAdminNotFound
	}
	h.logger.Error("Admin command failed",
		zap.Error(err),
		zap.String("op", op),
		zap.String("phone", arg),
	)
	return textAdminFailed
}
