package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-console/internal/domain"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		token     string
		role      domain.Role
		wantToken bool
		wantRole  bool
	}{
		{name: "token and role", token: "a.b.c", role: domain.RoleAdmin, wantToken: true, wantRole: true},
		{name: "token without role", token: "a.b.c", role: domain.RoleNone, wantToken: true, wantRole: false},
		{name: "role without token is dropped", token: "", role: domain.RoleUser, wantToken: false, wantRole: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := domain.NewSession(tt.token, tt.role)
			assert.Equal(t, tt.wantToken, s.HasToken())
			assert.Equal(t, tt.wantRole, s.HasRole())
		})
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	role, ok := domain.ParseRole("ADMIN")
	assert.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, role)

	role, ok = domain.ParseRole(" USER ")
	assert.True(t, ok)
	assert.Equal(t, domain.RoleUser, role)

	role, ok = domain.ParseRole("SUPERUSER")
	assert.False(t, ok)
	assert.Equal(t, domain.RoleNone, role)
}

func TestRoleSet(t *testing.T) {
	t.Parallel()

	set := domain.NewRoleSet(domain.RoleAdmin, domain.RoleAdmin, domain.RoleNone, domain.RoleUser)

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(domain.RoleAdmin))
	assert.True(t, set.Contains(domain.RoleUser))
	assert.False(t, set.Contains(domain.RoleNone))
	assert.False(t, domain.NewRoleSet().Contains(domain.RoleAdmin))
}

func TestTranslations_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		translations domain.Translations
		wantErr      error
	}{
		{
			name:         "single translation",
			translations: domain.Translations{{Language: "en", Description: "desc"}},
		},
		{
			name: "distinct languages",
			translations: domain.Translations{
				{Language: "en", Description: "desc"},
				{Language: "es", Description: "descripción"},
			},
		},
		{
			name:    "empty",
			wantErr: domain.ErrNoTranslations,
		},
		{
			name: "duplicate after canonicalisation",
			translations: domain.Translations{
				{Language: "en", Description: "a"},
				{Language: "EN", Description: "b"},
			},
			wantErr: domain.ErrDuplicateLanguage,
		},
		{
			name:         "invalid tag",
			translations: domain.Translations{{Language: "not a tag", Description: "x"}},
			wantErr:      domain.ErrInvalidLanguage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.translations.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOrderStatus_Transition(t *testing.T) {
	t.Parallel()

	next, err := domain.OrderStatusPending.Transition(domain.OrderStatusReceived)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReceived, next)

	next, err = domain.OrderStatusPending.Transition(domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, next)

	for _, from := range []domain.OrderStatus{domain.OrderStatusReceived, domain.OrderStatusCancelled} {
		for _, to := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusReceived, domain.OrderStatusCancelled} {
			_, err := from.Transition(to)
			require.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", from, to)
		}
	}

	_, err = domain.OrderStatusPending.Transition(domain.OrderStatusPending)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrderInput_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, domain.OrderInput{ProductID: "p1", Quantity: 1}.Validate())
	require.ErrorIs(t, domain.OrderInput{Quantity: 1}.Validate(), domain.ErrNoProductID)
	require.ErrorIs(t, domain.OrderInput{ProductID: "p1"}.Validate(), domain.ErrInvalidQuantity)
}

func TestResult_Match(t *testing.T) {
	t.Parallel()

	var successes, failures int

	ok := domain.Success(domain.Product{ID: "p1", Price: decimal.NewFromInt(10)})
	ok.Match(func(p domain.Product) { successes++ }, func(domain.ErrorDetail) { failures++ })
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, failures)

	bad := domain.Failure[domain.Product](domain.ErrorDetail{StatusCode: 404, Cause: "NOT_FOUND", Message: "Product not found"})
	bad.Match(func(domain.Product) { successes++ }, func(d domain.ErrorDetail) {
		failures++
		assert.Equal(t, "Product not found", d.Message)
	})
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
}
