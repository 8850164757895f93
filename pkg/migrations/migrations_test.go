package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpScriptsOrdered(t *testing.T) {
	scripts, err := UpScripts()
	require.NoError(t, err)
	require.Len(t, scripts, 3)

	assert.Contains(t, scripts[0], "CREATE TABLE IF NOT EXISTS accounts")
	assert.Contains(t, scripts[1], "CREATE TABLE IF NOT EXISTS planted_products")
	assert.Contains(t, scripts[2], "CREATE TABLE IF NOT EXISTS activity_log")
}
