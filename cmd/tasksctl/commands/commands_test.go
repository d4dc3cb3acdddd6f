package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "memory")
	t.Setenv("TASKS_JWT_SECRET", "tasksctl-test-secret")
	t.Setenv("IDP_JWKS_URL", "")
}

func TestTokenThenVerify(t *testing.T) {
	setTestEnv(t)

	var tokenOut, stderr bytes.Buffer
	tokenCmd := NewTokenCmd()
	tokenCmd.SetOut(&tokenOut)
	tokenCmd.SetErr(&stderr)
	tokenCmd.SetArgs([]string{"--uid", "cli-user", "--email", "cli@example.com", "--ttl", "10m"})
	if err := tokenCmd.Execute(); err != nil {
		t.Fatalf("token: %v", err)
	}
	if !strings.HasPrefix(stderr.String(), "expires ") {
		t.Errorf("Expected expiry on stderr, got %q", stderr.String())
	}

	var verifyOut bytes.Buffer
	verifyCmd := NewVerifyCmd()
	verifyCmd.SetOut(&verifyOut)
	verifyCmd.SetArgs([]string{strings.TrimSpace(tokenOut.String())})
	if err := verifyCmd.Execute(); err != nil {
		t.Fatalf("verify: %v", err)
	}

	got := verifyOut.String()
	for _, want := range []string{"uid:    cli-user", "email:  cli@example.com", "source: session"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in output:\n%s", want, got)
		}
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	setTestEnv(t)

	cmd := NewVerifyCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"not-a-token"})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected verification to fail")
	}
}

func TestCommands_RequiredFlags(t *testing.T) {
	setTestEnv(t)

	tests := []struct {
		name    string
		cmd     func() *cobra.Command
		args    []string
		wantErr string
	}{
		{name: "token without uid", cmd: NewTokenCmd, wantErr: "--uid is required"},
		{name: "list without owner", cmd: NewListCmd, wantErr: "--owner is required"},
		{name: "list on memory store", cmd: NewListCmd, args: []string{"--owner", "u1"}, wantErr: "no persistent data"},
		{name: "migrate on memory store", cmd: NewMigrateCmd, wantErr: "no persistent data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cmd()
			c.SetOut(&bytes.Buffer{})
			c.SetErr(&bytes.Buffer{})
			c.SetArgs(append([]string{}, tt.args...))
			err := c.Execute()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
