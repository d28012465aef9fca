package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"ledgerbot/internal/amount"
	"ledgerbot/internal/domain"

	"go.uber.org/zap"
)

const (
	optionIncome      = "1"
	optionExpense     = "2"
	optionNewCategory = "99"
	optionConfirm     = "1"

	minNameLength = 2

	// bounds the re-dispatch loop of one message
	maxTransitions = 4
)

type redispatch int

const (
	// done: the input was consumed
	done redispatch = iota
	// again: run the next step with the same input
	again
	// proceed: run the next step with no input, so it shows its prompt
	proceed
)

// transition is the outcome of one step: the next step, the replies to
// send, and whether the next step runs within the same message
type transition struct {
	next    domain.Step
	replies []string
	then    redispatch
}

func stay(s *domain.Session, replies ...string) transition {
	return transition{next: s.Step, replies: replies}
}

func moveTo(next domain.Step, replies ...string) transition {
	return transition{next: next, replies: replies}
}

// converse runs the session state machine for an authorized subscriber
// and returns the replies
func (h *Handler) converse(ctx context.Context, sub *domain.Subscriber, text string) []string {
	sess := h.sessions.Get(sub.Phone)
	input := text

	var replies []string
	for i := 0; i < maxTransitions; i++ {
		tr := h.step(ctx, sub, sess, input)
		replies = append(replies, tr.replies...)

		if tr.next == domain.StepMenu {
			sess.Reset()
		} else {
			sess.Step = tr.next
		}

		if tr.then == done {
			break
		}
		if tr.then == proceed {
			input = ""
		}
	}

	// a session back at the menu carries nothing worth keeping
	if sess.Step == domain.StepMenu {
		h.sessions.Reset(sub.Phone)
	} else {
		h.sessions.Save(sub.Phone, sess)
	}
	return replies
}

// step applies one transition. Onboarding gates run first, in order:
// email, name, ledger.
func (h *Handler) step(ctx context.Context, sub *domain.Subscriber, s *domain.Session, input string) transition {
	if !sub.HasValidEmail() {
		return h.stepEmail(ctx, sub, s, input)
	}
	if !sub.HasName() {
		return h.stepName(ctx, sub, s, input)
	}
	if !sub.HasLedger() {
		return h.stepLedger(ctx, sub, s)
	}

	if isMenuCommand(input) {
		return moveTo(domain.StepMenu, menuPrompt())
	}

	switch s.Step {
	case domain.StepCategorySelect:
		return h.stepCategorySelect(s, input)
	case domain.StepCategoryNew:
		return h.stepCategoryNew(ctx, sub, s, input)
	case domain.StepAmountEntry:
		return h.stepAmount(s, input)
	case domain.StepConfirm:
		return h.stepConfirm(ctx, sub, s, input)
	case domain.StepMenu:
		return h.stepMenu(ctx, sub, s, input)
	}
	// leftover onboarding step whose gate is satisfied
	return transition{next: domain.StepMenu, then: again}
}

// stepEmail accepts anything shaped like an email, whatever the current step
func (h *Handler) stepEmail(ctx context.Context, sub *domain.Subscriber, s *domain.Session, input string) transition {
	err := h.subscriberService.SaveEmail(ctx, sub, input)
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		if s.Step == domain.StepAskEmail && input != "" {
			return stay(s, textInvalidEmail)
		}
		return moveTo(domain.StepAskEmail, textAskEmail)
	case err != nil:
		h.logger.Error("Failed to save email", zap.Error(err), zap.String("phone", sub.Phone))
		return moveTo(domain.StepAskEmail, textUnexpected)
	}

	h.logger.Info("Email saved", zap.String("phone", sub.Phone))
	replies := []string{textEmailSaved}

	// provisioning failures here are retried by the ledger gate
	provisioned, err := h.ledgerService.EnsureProvisioned(ctx, sub)
	if err != nil {
		h.logger.Error("Failed to provision ledger", zap.Error(err), zap.String("phone", sub.Phone))
	} else if provisioned {
		replies = append(replies, ledgerCreatedText(sub.LedgerURL))
	}

	switch {
	case !sub.HasName():
		return moveTo(domain.StepAskName, append(replies, textAskName)...)
	case err != nil:
		return moveTo(domain.StepMenu, append(replies, textProvisionFailed)...)
	}
	return transition{next: domain.StepMenu, replies: replies, then: proceed}
}

func (h *Handler) stepLedger(ctx context.Context, sub *domain.Subscriber, s *domain.Session) transition {
	if _, err := h.ledgerService.EnsureProvisioned(ctx, sub); err != nil {
		h.logger.Error("Failed to provision ledger", zap.Error(err), zap.String("phone", sub.Phone))
		return stay(s, textProvisionFailed)
	}
	return transition{
		next:    s.Step,
		replies: []string{ledgerCreatedText(sub.LedgerURL)},
		then:    again,
	}
}

func (h *Handler) stepName(ctx context.Context, sub *domain.Subscriber, s *domain.Session, input string) transition {
	if s.Step != domain.StepAskName || input == "" {
		return moveTo(domain.StepAskName, textAskName)
	}
	if utf8.RuneCountInString(input) < minNameLength || isCommand(input) {
		return stay(s, textInvalidName)
	}

	if err := h.subscriberService.SaveName(ctx, sub, input); err != nil {
		h.logger.Error("Failed to save name", zap.Error(err), zap.String("phone", sub.Phone))
		return stay(s, textUnexpected)
	}

	h.logger.Info("Subscriber onboarded", zap.String("phone", sub.Phone))
	return transition{
		next:    domain.StepMenu,
		replies: []string{greetingText(sub.DisplayName)},
		then:    proceed,
	}
}

func (h *Handler) stepMenu(ctx context.Context, sub *domain.Subscriber, s *domain.Session, input string) transition {
	switch input {
	case "":
		return moveTo(domain.StepMenu, menuPrompt())
	case optionIncome:
		return h.startKind(ctx, sub, s, domain.KindIncome)
	case optionExpense:
		return h.startKind(ctx, sub, s, domain.KindExpense)
	}

	if kind, ok := domain.KindFromKeyword(firstWord(input)); ok {
		return moveTo(domain.StepMenu, h.oneShot(ctx, sub, kind, input))
	}

	switch firstWord(input) {
	case "movimientos", "ultimos", "últimos":
		return moveTo(domain.StepMenu, h.recent(ctx, sub))
	case "ayuda", "help":
		return moveTo(domain.StepMenu, helpText())
	}

	return moveTo(domain.StepMenu, menuPrompt()+"\n\n"+helpText())
}

func (h *Handler) startKind(ctx context.Context, sub *domain.Subscriber, s *domain.Session, kind domain.Kind) transition {
	s.Kind = kind
	s.Categories = h.ledgerService.Categories(ctx, sub.LedgerID, kind)
	return moveTo(domain.StepCategorySelect, categoryPrompt(kind, s.Categories))
}

func (h *Handler) stepCategorySelect(s *domain.Session, input string) transition {
	if input == optionNewCategory {
		return moveTo(domain.StepCategoryNew, newCategoryPrompt(s.Kind))
	}

	idx, err := strconv.Atoi(input)
	if err != nil || idx < 1 || idx > len(s.Categories) {
		return stay(s, textInvalidOption)
	}

	s.Category = s.Categories[idx-1]
	return moveTo(domain.StepAmountEntry, textAskAmount)
}

func (h *Handler) stepCategoryNew(ctx context.Context, sub *domain.Subscriber, s *domain.Session, input string) transition {
	name, err := h.ledgerService.AddCategory(ctx, sub.LedgerID, s.Kind, input)
	switch {
	case errors.Is(err, domain.ErrInvalidCategory):
		return stay(s, textInvalidCategory)
	case err != nil:
		h.logger.Error("Failed to add category",
			zap.Error(err),
			zap.String("phone", sub.Phone),
			zap.String("ledger_id", sub.LedgerID),
		)
		return stay(s, textCategoryFailed)
	}

	s.Category = name
	return moveTo(domain.StepAmountEntry, categoryReadyText(name))
}

func (h *Handler) stepAmount(s *domain.Session, input string) transition {
	value, err := amount.Parse(input)
	if err != nil {
		return stay(s, textInvalidAmount)
	}

	s.Amount = s.Kind.Signed(value)
	return moveTo(domain.StepConfirm, confirmPrompt(s))
}

func (h *Handler) stepConfirm(ctx context.Context, sub *domain.Subscriber, s *domain.Session, input string) transition {
	if input != optionConfirm {
		return moveTo(domain.StepMenu, textCancelled+"\n"+menuPrompt())
	}

	tx, err := h.ledgerService.Record(ctx, sub.LedgerID, s.Kind, s.Category, s.Amount, s.Detail)
	if err != nil {
		h.logger.Error("Failed to record transaction",
			zap.Error(err),
			zap.String("phone", sub.Phone),
			zap.String("ledger_id", sub.LedgerID),
			zap.String("kind", string(s.Kind)),
		)
		return moveTo(domain.StepMenu, textAppendFailed)
	}

	h.logger.Info("Transaction recorded",
		zap.String("phone", sub.Phone),
		zap.String("ledger_id", sub.LedgerID),
		zap.String("id", tx.ID),
	)
	return moveTo(domain.StepMenu, recordedText(tx)+"\n\n0) Menú")
}

func isMenuCommand(input string) bool {
	return input == "0" || strings.EqualFold(input, "menu") || strings.EqualFold(input, "menú")
}

// isCommand reports whether input starts like a transaction command
func isCommand(input string) bool {
	if _, ok := domain.KindFromKeyword(firstWord(input)); ok {
		return true
	}
	return false
}
