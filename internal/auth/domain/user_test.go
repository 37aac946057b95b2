package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aussiebroadwan/gatekeep/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestTwoFactorState(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	empty := ""

	tests := []struct {
		name string
		user domain.User
		want domain.TwoFactorState
	}{
		{"registered", domain.User{}, domain.TwoFactorNone},
		{"empty secret counts as none", domain.User{TOTPSecret: &empty}, domain.TwoFactorNone},
		{"pending", domain.User{TOTPSecret: &secret}, domain.TwoFactorPending},
		{"enabled", domain.User{TOTPSecret: &secret, TwoFAEnabled: true}, domain.TwoFactorEnabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.user.TwoFactorState())
		})
	}
}

func TestUserView_HidesSecrets(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	u := domain.User{ID: 3, Username: "alice", PasswordHash: "$argon2id$...", TOTPSecret: &secret, TwoFAEnabled: true}

	raw, err := json.Marshal(u.View())
	require.NoError(t, err)
	require.JSONEq(t, `{"id":3,"username":"alice","is_2fa_enabled":true}`, string(raw))
}
