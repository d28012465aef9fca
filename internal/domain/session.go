package domain

import "github.com/shopspring/decimal"

// Step represents where a subscriber is in the conversation
type Step string

const (
	StepMenu           Step = "MENU"
	StepAskEmail       Step = "ASK_EMAIL"
	StepAskName        Step = "ASK_NAME"
	StepCategorySelect Step = "CATEGORY_SELECT"
	StepCategoryNew    Step = "CATEGORY_NEW"
	StepAmountEntry    Step = "AMOUNT_ENTRY"
	StepConfirm        Step = "CONFIRM"
)

// Session holds the conversational state of one identity.
// Fields other than Step are scratch data for the transaction being built.
type Session struct {
	Step       Step
	Kind       Kind
	Categories []string
	Category   string
	Amount     decimal.Decimal
	Detail     string
}

// NewSession returns a session sitting at the main menu
func NewSession() *Session {
	return &Session{Step: StepMenu}
}

// Reset drops any pending transaction and returns to the main menu
func (s *Session) Reset() {
	*s = Session{Step: StepMenu}
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	if s.Categories != nil {
		c.Categories = append([]string(nil), s.Categories...)
	}
	return &c
}
