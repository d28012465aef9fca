package sheets

import (
	"context"
	"errors"
	"testing"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/phone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminSheet = "admin-sheet"

func newDirectoryFixture() (*DirectoryRepo, *fakeValues) {
	values := newFakeValues()
	values.setSheet(adminSheet, directorySheet, [][]interface{}{
		{"Telefono", "Email", "Autorizado", "Sheet_ID", "Sheet_URL", "Nombre", "Observacion"},
		{"+51911111111", "ana@example.com", "TRUE", "sheet-ana", "https://example/sheet-ana", "Ana"},
		{"922222222", "", "FALSE"},
		{float64(51933333333), "", true},
	})
	return NewDirectoryRepo(values, adminSheet, phone.NewNormalizer("51", 9)), values
}

func TestDirectoryRepo_FindByPhone(t *testing.T) {
	tests := []struct {
		name          string
		phone         string
		expected      *domain.Subscriber
		expectedError error
	}{
		{
			name:  "canonical row",
			phone: "+51911111111",
			expected: &domain.Subscriber{
				Phone:       "+51911111111",
				Email:       "ana@example.com",
				Authorized:  true,
				LedgerID:    "sheet-ana",
				LedgerURL:   "https://example/sheet-ana",
				DisplayName: "Ana",
			},
		},
		{
			name:     "row typed as local number",
			phone:    "+51922222222",
			expected: &domain.Subscriber{Phone: "+51922222222"},
		},
		{
			name:     "numeric cell with boolean flag",
			phone:    "51933333333@c.us",
			expected: &domain.Subscriber{Phone: "+51933333333", Authorized: true},
		},
		{
			name:          "missing phone",
			phone:         "+51944444444",
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newDirectoryFixture()

			sub, err := repo.FindByPhone(context.Background(), tt.phone)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sub)
		})
	}
}

func TestDirectoryRepo_FindByPhone_RemoteFailure(t *testing.T) {
	repo, values := newDirectoryFixture()
	values.getErr = errors.New("quota exceeded")

	_, err := repo.FindByPhone(context.Background(), "+51911111111")
	assert.Error(t, err)
}

func TestDirectoryRepo_SetFields(t *testing.T) {
	repo, values := newDirectoryFixture()
	ctx := context.Background()

	err := repo.SetFields(ctx, "+51922222222", map[domain.Field]string{
		domain.FieldEmail:       "bea@example.com",
		domain.FieldDisplayName: "Bea",
	})
	require.NoError(t, err)

	ranges := []string{}
	for _, u := range values.updates {
		ranges = append(ranges, u.Range)
	}
	assert.ElementsMatch(t, []string{"Suscriptores!B3", "Suscriptores!F3"}, ranges)

	sub, err := repo.FindByPhone(ctx, "+51922222222")
	require.NoError(t, err)
	assert.Equal(t, "bea@example.com", sub.Email)
	assert.Equal(t, "Bea", sub.DisplayName)
	assert.False(t, sub.Authorized)
}

func TestDirectoryRepo_SetFields_NotFound(t *testing.T) {
	repo, _ := newDirectoryFixture()

	err := repo.SetFields(context.Background(), "+51944444444", map[domain.Field]string{domain.FieldEmail: "x@y.z"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDirectoryRepo_SetAuthorized(t *testing.T) {
	repo, values := newDirectoryFixture()
	ctx := context.Background()

	require.NoError(t, repo.SetAuthorized(ctx, "+51911111111", false))
	assert.Equal(t, "Suscriptores!C2", values.updates[0].Range)
	assert.Equal(t, InputRaw, values.options[0])

	sub, err := repo.FindByPhone(ctx, "+51911111111")
	require.NoError(t, err)
	assert.False(t, sub.Authorized)
}

func TestDirectoryRepo_Append(t *testing.T) {
	repo, values := newDirectoryFixture()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "944444444"))
	require.NoError(t, repo.Append(ctx, "+51944444444"))

	rows, _ := values.sheet(adminSheet, directorySheet)
	assert.Len(t, rows, 5)

	sub, err := repo.FindByPhone(ctx, "+51944444444")
	require.NoError(t, err)
	assert.True(t, sub.Authorized)
	assert.Equal(t, "+51944444444", sub.Phone)
}

func TestDirectoryRepo_Append_ExistingRowIsAuthorized(t *testing.T) {
	repo, values := newDirectoryFixture()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "+51922222222"))

	rows, _ := values.sheet(adminSheet, directorySheet)
	assert.Len(t, rows, 4)

	sub, err := repo.FindByPhone(ctx, "+51922222222")
	require.NoError(t, err)
	assert.True(t, sub.Authorized)
}

func TestDirectoryRepo_Append_EmptySheetWritesHeader(t *testing.T) {
	values := newFakeValues()
	values.setSheet(adminSheet, directorySheet, [][]interface{}{})
	repo := NewDirectoryRepo(values, adminSheet, phone.NewNormalizer("51", 9))
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "+51955555555"))

	rows, _ := values.sheet(adminSheet, directorySheet)
	require.Len(t, rows, 2)
	assert.Equal(t, "telefono", rows[0][0])

	sub, err := repo.FindByPhone(ctx, "+51955555555")
	require.NoError(t, err)
	assert.True(t, sub.Authorized)
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(0))
	assert.Equal(t, "G", columnLetter(6))
	assert.Equal(t, "Z", columnLetter(25))
	assert.Equal(t, "AA", columnLetter(26))
	assert.Equal(t, "AZ", columnLetter(51))
}
