package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codekarmatech/healthyphysio-sub004/internal/identity"
)

func newTestCLI(who identity.Identity, prompt func(string) (string, error)) (*commandLine, *bytes.Buffer) {
	var out bytes.Buffer
	cli := &commandLine{
		who:    who,
		out:    &out,
		prompt: prompt,
	}
	return cli, &out
}

var admin = identity.Identity{UserID: "u-admin", Role: identity.RoleAdmin}

func TestRejectAbortsOnEmptyReason(t *testing.T) {
	// The attendance service is nil on purpose: reaching it would panic,
	// so a clean errAborted proves the reject never touched the API.
	cli, _ := newTestCLI(admin, func(label string) (string, error) {
		return "   ", nil
	})

	err := cli.run([]string{"clinic-admin", "leaves", "reject", "leave-1"})
	assert.ErrorIs(t, err, errAborted)

	err = cli.run([]string{"clinic-admin", "requests", "reject", "cr-1"})
	assert.ErrorIs(t, err, errAborted)
}

func TestRejectAbortsOnCancelledPrompt(t *testing.T) {
	cli, _ := newTestCLI(admin, func(label string) (string, error) {
		return "", errors.New("interrupted")
	})

	err := cli.run([]string{"clinic-admin", "leaves", "reject", "leave-1"})
	assert.ErrorIs(t, err, errAborted)
}

func TestAdminOnlyCommandsRejectOtherRoles(t *testing.T) {
	therapist := identity.Identity{UserID: "u-th", Role: identity.RoleTherapist}
	cli, _ := newTestCLI(therapist, nil)

	for _, args := range [][]string{
		{"clinic-admin", "attendance", "list"},
		{"clinic-admin", "requests", "list"},
		{"clinic-admin", "distribution", "-appointment", "a", "-fee", "1200"},
		{"clinic-admin", "configs", "list"},
		{"clinic-admin", "earnings"},
	} {
		err := cli.run(args)
		assert.ErrorIs(t, err, errAdminRequired, args[1])
	}
}

func TestUnknownCommandPrintsUsage(t *testing.T) {
	cli, out := newTestCLI(admin, nil)

	err := cli.run([]string{"clinic-admin", "frobnicate"})
	require.ErrorIs(t, err, errHelp)
	assert.Contains(t, out.String(), "Usage:")
}
