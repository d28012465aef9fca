package service

import (
	"context"
	"strings"
	"testing"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubscriberService_Authorize(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		existing   *domain.Subscriber
		findError  error
		expectCall string
	}{
		{
			name:       "absent phone is appended",
			input:      "+51 999 999 999",
			findError:  domain.ErrNotFound,
			expectCall: "Append",
		},
		{
			name:       "deauthorized phone is flipped",
			input:      "999999999",
			existing:   &domain.Subscriber{Phone: "+51999999999"},
			expectCall: "SetAuthorized",
		},
		{
			name:     "already authorized is a no-op",
			input:    "51999999999",
			existing: &domain.Subscriber{Phone: "+51999999999", Authorized: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockDirectoryRepository)
			mockRepo.On("FindByPhone", mock.Anything, "+51999999999").Return(tt.existing, tt.findError)
			switch tt.expectCall {
			case "Append":
				mockRepo.On("Append", mock.Anything, "+51999999999").Return(nil)
			case "SetAuthorized":
				mockRepo.On("SetAuthorized", mock.Anything, "+51999999999", true).Return(nil)
			}

			service := NewSubscriberService(mockRepo, newPhones())

			p, err := service.Authorize(context.Background(), tt.input)

			require.NoError(t, err)
			assert.Equal(t, "+51999999999", p)
			mockRepo.AssertExpectations(t)
			if tt.expectCall == "" {
				mockRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
				mockRepo.AssertNotCalled(t, "SetAuthorized", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestSubscriberService_Authorize_Twice(t *testing.T) {
	dir := testutil.NewMemoryDirectory()
	service := NewSubscriberService(dir, newPhones())
	ctx := context.Background()

	_, err := service.Authorize(ctx, "+51999999999")
	require.NoError(t, err)
	_, err = service.Authorize(ctx, "999 999 999")
	require.NoError(t, err)

	assert.Equal(t, 1, dir.Len())
	assert.True(t, dir.Get("+51999999999").Authorized)
}

func TestSubscriberService_InvalidPhone(t *testing.T) {
	mockRepo := new(testutil.MockDirectoryRepository)
	service := NewSubscriberService(mockRepo, newPhones())
	ctx := context.Background()

	_, err := service.Authorize(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	_, err = service.Deauthorize(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	_, err = service.Status(ctx, "+")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	mockRepo.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}

func TestSubscriberService_Deauthorize(t *testing.T) {
	mockRepo := new(testutil.MockDirectoryRepository)
	mockRepo.On("FindByPhone", mock.Anything, "+51999999999").Return(&domain.Subscriber{Phone: "+51999999999", Authorized: true}, nil)
	mockRepo.On("SetAuthorized", mock.Anything, "+51999999999", false).Return(nil)

	service := NewSubscriberService(mockRepo, newPhones())

	p, err := service.Deauthorize(context.Background(), "999999999")

	require.NoError(t, err)
	assert.Equal(t, "+51999999999", p)
	mockRepo.AssertExpectations(t)
}

func TestSubscriberService_Deauthorize_NotFound(t *testing.T) {
	mockRepo := new(testutil.MockDirectoryRepository)
	mockRepo.On("FindByPhone", mock.Anything, "+51999999999").Return(nil, domain.ErrNotFound)

	service := NewSubscriberService(mockRepo, newPhones())

	_, err := service.Deauthorize(context.Background(), "+51999999999")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "SetAuthorized", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscriberService_SaveEmail(t *testing.T) {
	mockRepo := new(testutil.MockDirectoryRepository)
	mockRepo.On("SetFields", mock.Anything, "+51999999999", map[domain.Field]string{domain.FieldEmail: "ana@example.com"}).Return(nil)

	service := NewSubscriberService(mockRepo, newPhones())
	sub := &domain.Subscriber{Phone: "+51999999999"}

	assert.ErrorIs(t, service.SaveEmail(context.Background(), sub, "not-an-email"), domain.ErrInvalidEmail)
	require.NoError(t, service.SaveEmail(context.Background(), sub, "  ana@example.com "))

	assert.Equal(t, "ana@example.com", sub.Email)
	mockRepo.AssertNumberOfCalls(t, "SetFields", 1)
}

func TestSubscriberService_SaveName_Truncates(t *testing.T) {
	long := strings.Repeat("ñ", 70)
	want := strings.Repeat("ñ", maxNameLength)

	mockRepo := new(testutil.MockDirectoryRepository)
	mockRepo.On("SetFields", mock.Anything, "+51999999999", map[domain.Field]string{domain.FieldDisplayName: want}).Return(nil)

	service := NewSubscriberService(mockRepo, newPhones())
	sub := &domain.Subscriber{Phone: "+51999999999"}

	require.NoError(t, service.SaveName(context.Background(), sub, long))

	assert.Equal(t, want, sub.DisplayName)
	mockRepo.AssertExpectations(t)
}
