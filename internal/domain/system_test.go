package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysUserPassword(t *testing.T) {
	var u SysUser
	require.NoError(t, u.SetPassword("s3cret-pass"))

	assert.NotEqual(t, "s3cret-pass", u.Password, "plaintext must never be stored")
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))

	old := u.Password
	require.NoError(t, u.SetPassword("new-pass-123"))
	assert.NotEqual(t, old, u.Password)
	assert.False(t, u.CheckPassword("s3cret-pass"))
	assert.True(t, u.CheckPassword("new-pass-123"))
}
