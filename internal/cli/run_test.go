package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI invokes Run the way main does, against an isolated work directory.
func runCLI(t *testing.T, workDir, stdin string, args ...string) (string, string, int) {
	t.Helper()

	var out, errOut strings.Builder

	argv := append([]string{"caseboard", "-C", workDir}, args...)
	env := map[string]string{"USER": "tester"}

	code := Run(strings.NewReader(stdin), &out, &errOut, argv, env)

	return out.String(), errOut.String(), code
}

func createCase(t *testing.T, workDir, number string, extra ...string) string {
	t.Helper()

	args := append([]string{"create", number}, extra...)

	out, errOut, code := runCLI(t, workDir, "", args...)
	require.Equal(t, 0, code, "create failed: %s", errOut)

	return strings.TrimSpace(out)
}

func TestCreateShowLsFlow(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	id := createCase(t, workDir, "24-CV-0101",
		"--name", "Hart v. Mercer", "--status", "filed", "--sol", "2026-03-14")
	require.NotEmpty(t, id)

	out, _, code := runCLI(t, workDir, "", "show", id)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "case number:      24-CV-0101")
	assert.Contains(t, out, "status:           filed")
	assert.Contains(t, out, "sol date:         2026-03-14")

	// show resolves by case number too
	out, _, code = runCLI(t, workDir, "", "show", "24-CV-0101")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "id:               "+id)

	out, _, code = runCLI(t, workDir, "", "ls", "--status", "filed")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "24-CV-0101")

	out, _, code = runCLI(t, workDir, "", "ls", "--status", "closed")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "no cases")
}

func TestCreateRejectsBadEnums(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	_, errOut, code := runCLI(t, workDir, "", "create", "24-CV-0101", "--status", "pending")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid status")

	_, errOut, code = runCLI(t, workDir, "", "create", "24-CV-0101", "--attention", "urgent")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid attention")

	_, errOut, code = runCLI(t, workDir, "", "create", "24-CV-0101", "--type", "Maritime")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid case type")
}

func TestCreateNormalizesLegacyType(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	id := createCase(t, workDir, "24-FL-0007", "--type", "Family Law")

	out, _, code := runCLI(t, workDir, "", "show", id)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "type:             Divorce")
}

func TestEditChangesOnlyGivenFlags(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	id := createCase(t, workDir, "24-CV-0101", "--name", "Hart v. Mercer", "--paralegal", "D. Okafor")

	_, errOut, code := runCLI(t, workDir, "", "edit", id, "--status", "closed")
	require.Equal(t, 0, code, errOut)

	out, _, code := runCLI(t, workDir, "", "show", id)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "status:           closed")
	assert.Contains(t, out, "paralegal:        D. Okafor")

	_, errOut, code = runCLI(t, workDir, "", "edit", id, "--status", "bogus")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid status")
}

func TestFocusSetAndHistory(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	id := createCase(t, workDir, "24-CV-0101")

	_, errOut, code := runCLI(t, workDir, "", "focus", id, "draft", "motion", "to", "compel")
	require.Equal(t, 0, code, errOut)

	out, _, code := runCLI(t, workDir, "", "focus", "--history", id)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "draft motion to compel")
	assert.Contains(t, out, "tester")

	// Same text again: command succeeds but warns and exits nonzero.
	_, errOut, code = runCLI(t, workDir, "", "focus", id, "draft motion to compel")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "focus unchanged")
}

func TestDeadlineAddAndResolve(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	id := createCase(t, workDir, "24-CV-0101")

	out, errOut, code := runCLI(t, workDir, "", "deadline", id, "--due", "2025-11-05", "--desc", "respond")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "next due 2025-11-05")

	out, errOut, code = runCLI(t, workDir, "", "deadline", id, "--due", "2025-12-01", "--desc", "hearing")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "next due 2025-11-05")

	out, errOut, code = runCLI(t, workDir, "", "deadline", id, "--resolve", "1")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "next due 2025-12-01")

	_, errOut, code = runCLI(t, workDir, "", "deadline", id, "--resolve", "9")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no deadline at that position")
}

func TestRmAndAuditTrail(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	id := createCase(t, workDir, "24-CV-0101")

	out, errOut, code := runCLI(t, workDir, "", "rm", id)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "removed 24-CV-0101")

	out, _, code = runCLI(t, workDir, "", "audit")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "deleted")

	_, errOut, code = runCLI(t, workDir, "", "show", id)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "case not found")
}

func TestRepairRestoresFromBackup(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	id := createCase(t, workDir, "24-CV-0101")

	// Second save produces a backup of the first.
	_, errOut, code := runCLI(t, workDir, "", "edit", id, "--stage", "Discovery")
	require.Equal(t, 0, code, errOut)

	casesPath := filepath.Join(workDir, ".caseboard", "cases.json")
	require.NoError(t, os.WriteFile(casesPath, []byte("{broken"), 0o644))

	// Answer "1": restore the newest backup.
	out, errOut, code := runCLI(t, workDir, "1\n", "repair")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "dataset unreadable")
	assert.Contains(t, out, "restored cases-")

	out, _, code = runCLI(t, workDir, "", "show", id)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "24-CV-0101")
}

func TestRepairLatestSkipsPrompt(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	id := createCase(t, workDir, "24-CV-0101")

	_, _, code := runCLI(t, workDir, "", "edit", id, "--stage", "Discovery")
	require.Equal(t, 0, code)

	casesPath := filepath.Join(workDir, ".caseboard", "cases.json")
	require.NoError(t, os.WriteFile(casesPath, []byte("{broken"), 0o644))

	out, errOut, code := runCLI(t, workDir, "", "repair", "--latest")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "restored cases-")
}

func TestRepairOnHealthyDataset(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()

	createCase(t, workDir, "24-CV-0101")

	out, _, code := runCLI(t, workDir, "", "repair")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "dataset OK: version 1, 1 cases")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	_, errOut, code := runCLI(t, t.TempDir(), "", "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown command")
}

func TestValueFlagsWithoutArgumentFail(t *testing.T) {
	t.Parallel()

	for _, flag := range []string{"-C", "--cwd", "-c", "--config", "--data-dir", "--actor"} {
		var out, errOut strings.Builder

		code := Run(strings.NewReader(""), &out, &errOut,
			[]string{"caseboard", flag}, map[string]string{})
		assert.Equal(t, 1, code, "flag %s", flag)
		assert.Contains(t, errOut.String(), "flag requires an argument", "flag %s", flag)
	}
}

func TestUsageWithoutArgs(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := Run(strings.NewReader(""), &out, &errOut, []string{"caseboard"}, map[string]string{})
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Usage: caseboard")
}
