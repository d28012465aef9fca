package service

import (
	"context"
	"errors"
	"strings"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/phone"
	"ledgerbot/internal/repository"
)

// maxNameLength bounds display names and category names, in characters
const maxNameLength = 60

// SubscriberService handles directory mutations
type SubscriberService struct {
	directory repository.DirectoryRepository
	phones    *phone.Normalizer
}

// NewSubscriberService creates a new subscriber service
func NewSubscriberService(directory repository.DirectoryRepository, phones *phone.Normalizer) *SubscriberService {
	return &SubscriberService{
		directory: directory,
		phones:    phones,
	}
}

func (s *SubscriberService) canonical(raw string) (string, error) {
	if !phone.HasDigits(raw) {
		return "", domain.ErrInvalidPhone
	}
	return s.phones.Normalize(raw), nil
}

// Authorize creates an authorized row or flips an existing one. Idempotent.
func (s *SubscriberService) Authorize(ctx context.Context, rawPhone string) (string, error) {
	p, err := s.canonical(rawPhone)
	if err != nil {
		return "", err
	}

	sub, err := s.directory.FindByPhone(ctx, p)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return p, s.directory.Append(ctx, p)
	case err != nil:
		return p, err
	case sub.Authorized:
		return p, nil
	}
	return p, s.directory.SetAuthorized(ctx, p, true)
}

// Deauthorize revokes access of an existing subscriber.
// Unknown phones get domain.ErrNotFound and no row is created.
func (s *SubscriberService) Deauthorize(ctx context.Context, rawPhone string) (string, error) {
	p, err := s.canonical(rawPhone)
	if err != nil {
		return "", err
	}

	if _, err := s.directory.FindByPhone(ctx, p); err != nil {
		return p, err
	}
	return p, s.directory.SetAuthorized(ctx, p, false)
}

// Status returns the directory record of a phone
func (s *SubscriberService) Status(ctx context.Context, rawPhone string) (*domain.Subscriber, error) {
	p, err := s.canonical(rawPhone)
	if err != nil {
		return nil, err
	}
	return s.directory.FindByPhone(ctx, p)
}

// SaveEmail validates and stores the subscriber's email
func (s *SubscriberService) SaveEmail(ctx context.Context, sub *domain.Subscriber, email string) error {
	email = strings.TrimSpace(email)
	if !domain.IsValidEmail(email) {
		return domain.ErrInvalidEmail
	}

	if err := s.directory.SetFields(ctx, sub.Phone, map[domain.Field]string{domain.FieldEmail: email}); err != nil {
		return err
	}
	sub.Email = email
	return nil
}

// SaveName stores the display name, truncated to maxNameLength characters
func (s *SubscriberService) SaveName(ctx context.Context, sub *domain.Subscriber, name string) error {
	name = truncate(strings.TrimSpace(name), maxNameLength)

	if err := s.directory.SetFields(ctx, sub.Phone, map[domain.Field]string{domain.FieldDisplayName: name}); err != nil {
		return err
	}
	sub.DisplayName = name
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
