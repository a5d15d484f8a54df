package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formbuilder/internal/model"
)

func TestNewRootCmd_Tree(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{{"migrate"}, {"user", "create"}, {"user", "list"}, {"user", "ls"}, {"sessions", "purge"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.NotNil(t, cmd.RunE, path)
	}

	migrate, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	assert.NotNil(t, migrate.Flags().Lookup("reset"))
}

func TestUserCreate_RequiresFlags(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"user", "create", "--email", "admin@example.com"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"password"`)
}

func TestPrintUsers(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)

	printUsers(root, nil)
	assert.Contains(t, out.String(), "No users found.")

	out.Reset()
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	printUsers(root, []model.User{
		{ID: 1, Email: "admin@example.com", Role: model.RoleAdmin, CreatedAt: created},
		{ID: 2, Email: "user@example.com", Role: model.RoleUser, CreatedAt: created},
	})
	assert.Contains(t, out.String(), "admin@example.com")
	assert.Contains(t, out.String(), "2024-05-01 09:30")
	assert.Contains(t, out.String(), "2 users")
}
