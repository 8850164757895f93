package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/testutil"
)

func TestPostgresRepository_Append(t *testing.T) {
	pool := testutil.NewPostgres(t)
	ctx := context.Background()
	acct, err := account.NewPostgresRepository(pool).Create(ctx, account.CreateParams{Email: "log@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	repo := NewPostgresRepository(pool)
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 12; i++ {
		_, err := repo.Append(ctx, Entry{
			AccountID:  acct.ID,
			Action:     ActionCreate,
			ModelName:  "Product",
			ObjectID:   uuid.NewString(),
			ObjectName: fmt.Sprintf("p-%d", i),
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		}, 12, 10)
		require.NoError(t, err)
	}

	e, err := repo.Append(ctx, Entry{
		AccountID:  acct.ID,
		Action:     ActionDelete,
		ModelName:  "Product",
		ObjectID:   uuid.NewString(),
		ObjectName: "last",
		Timestamp:  base.Add(time.Minute),
	}, 12, 10)
	require.NoError(t, err)
	assert.NotZero(t, e.ID)

	n, err := repo.Count(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recent, err := repo.Recent(ctx, acct.ID, 20)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "last", recent[0].ObjectName)
	assert.Equal(t, "p-11", recent[1].ObjectName)
	assert.Equal(t, "p-10", recent[2].ObjectName)
}
