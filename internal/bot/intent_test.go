package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCommandTokens(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		command string
	}{
		{name: "simple command", token: "cmd_help", command: "help"},
		{name: "command with underscores", token: "cmd_hubstaff_login", command: "hubstaff_login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := Decode(tt.token)
			require.NoError(t, err)
			require.Equal(t, NSCommand, intent.Namespace)
			require.Equal(t, tt.command, intent.Command)
		})
	}
}

func TestDecodeFamilies(t *testing.T) {
	tests := []struct {
		token string
		want  Intent
	}{
		{"logout_confirm_42", Intent{Namespace: NSLogout, Action: ActionConfirm, SubjectID: 42}},
		{"logout_cancel_42", Intent{Namespace: NSLogout, Action: ActionCancel, SubjectID: 42}},
		{"role_user_7", Intent{Namespace: NSRole, Action: RoleUser, SubjectID: 7}},
		{"role_admin_7", Intent{Namespace: NSRole, Action: RoleAdmin, SubjectID: 7}},
		{"role_back_7", Intent{Namespace: NSRole, Action: RoleBack, SubjectID: 7}},
		{"change_role_99", Intent{Namespace: NSChangeRole, SubjectID: 99}},
		{"admin_select_org_5", Intent{Namespace: NSAdmin, Action: AdminSelect, Option: "org", SubjectID: 5}},
		{"admin_show_activity_5", Intent{Namespace: NSAdmin, Action: AdminShow, Option: "activity", SubjectID: 5}},
		{"admin_generate_report_5", Intent{Namespace: NSAdmin, Action: AdminGenerate, Option: "report", SubjectID: 5}},
		{"show_admin_menu_13", Intent{Namespace: NSShowMenu, Action: RoleAdmin, SubjectID: 13}},
		{"show_user_menu_13", Intent{Namespace: NSShowMenu, Action: RoleUser, SubjectID: 13}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			intent, err := Decode(tt.token)
			require.NoError(t, err)
			require.Equal(t, tt.want, intent)
		})
	}
}

func TestDecodeRejectsMalformedTokens(t *testing.T) {
	tokens := []string{
		"cmd_",
		"logout_confirm",
		"logout_confirm_42_extra",
		"logout_maybe_42",
		"logout_confirm_abc",
		"role_42",
		"role_root_42",
		"change_role",
		"change_roles_42",
		"admin_select_org",
		"admin_delete_org_5",
		"show_admin_13",
		"show_admin_panel_13",
		"show_guest_menu_13",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			_, err := Decode(token)
			require.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestDecodeUnknownNamespace(t *testing.T) {
	for _, token := range []string{"giveaway_1", "noise", "xcmd_help"} {
		t.Run(token, func(t *testing.T) {
			_, err := Decode(token)
			require.ErrorIs(t, err, ErrUnknownNamespace)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	intents := []Intent{
		{Namespace: NSCommand, Command: "hubstaff_status"},
		{Namespace: NSLogout, Action: ActionConfirm, SubjectID: 42},
		{Namespace: NSLogout, Action: ActionCancel, SubjectID: -100500},
		{Namespace: NSRole, Action: RoleAdmin, SubjectID: 1},
		{Namespace: NSChangeRole, SubjectID: 8},
		{Namespace: NSAdmin, Action: AdminGenerate, Option: "report", SubjectID: 55},
		{Namespace: NSShowMenu, Action: RoleUser, SubjectID: 3},
	}

	for _, intent := range intents {
		token, err := Encode(intent)
		require.NoError(t, err)

		decoded, err := Decode(token)
		require.NoError(t, err)
		require.Equal(t, intent, decoded)
	}
}

func TestEncodeRejectsInvalidIntents(t *testing.T) {
	intents := []Intent{
		{Namespace: NSCommand, Command: ""},
		{Namespace: NSLogout, Action: "later", SubjectID: 1},
		{Namespace: NSRole, Action: "superuser", SubjectID: 1},
		{Namespace: NSAdmin, Action: AdminSelect, Option: "", SubjectID: 1},
		{Namespace: NSAdmin, Action: AdminSelect, Option: "org_list", SubjectID: 1},
		{Namespace: NSShowMenu, Action: RoleBack, SubjectID: 1},
	}

	for _, intent := range intents {
		_, err := Encode(intent)
		require.ErrorIs(t, err, ErrInvalidFormat)
	}
}
