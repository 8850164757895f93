package planting

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/activity"
	"github.com/tendant/agroyield/pkg/analytics"
	"github.com/tendant/agroyield/pkg/catalog"
)

type fixture struct {
	svc       *Service
	catalog   *catalog.Service
	accounts  *account.InMemoryRepository
	log       *activity.Log
	admin     account.Actor
	farmer    account.Actor
	other     account.Actor
	cotton    catalog.Product
	wheat     catalog.Product
	tashkent  catalog.Region
	samarkand catalog.Region
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{accounts: account.NewInMemoryRepository()}

	mk := func(email, first string, role account.Role) account.Account {
		a, err := f.accounts.Create(ctx, account.CreateParams{Email: email, FirstName: first, Role: role, ProfileComplete: true})
		require.NoError(t, err)
		return a
	}
	adm := mk("admin@example.com", "Ada", account.RoleAdmins)
	farmer := mk("farmer@example.com", "Bobur", account.RoleFarmers)
	other := mk("other@example.com", "Dilnoza", account.RoleFarmers)
	f.admin = account.Actor{ID: adm.ID, Admin: true}
	f.farmer = account.Actor{ID: farmer.ID}
	f.other = account.Actor{ID: other.ID}

	catRepo := catalog.NewInMemoryRepository()
	f.catalog = catalog.NewService(catRepo)
	var err error
	f.cotton, err = f.catalog.CreateProduct(ctx, f.admin, catalog.ProductInput{Name: "Cotton"})
	require.NoError(t, err)
	f.wheat, err = f.catalog.CreateProduct(ctx, f.admin, catalog.ProductInput{Name: "Wheat"})
	require.NoError(t, err)
	f.tashkent, err = f.catalog.CreateRegion(ctx, f.admin, catalog.RegionInput{Name: "Tashkent"})
	require.NoError(t, err)
	f.samarkand, err = f.catalog.CreateRegion(ctx, f.admin, catalog.RegionInput{Name: "Samarkand"})
	require.NoError(t, err)

	f.log = activity.NewLog(activity.NewInMemoryRepository())
	f.svc = NewService(NewInMemoryRepository(catRepo), f.accounts, f.catalog, WithActivityLog(f.log))
	return f
}

func (f *fixture) input(product catalog.Product, region catalog.Region, area, weight float64) Input {
	return Input{ProductID: &product.ID, RegionID: &region.ID, PlantingArea: area, ExpectingWeight: weight}
}

func TestCreate_OwnerIsActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Create(ctx, f.farmer, f.input(f.cotton, f.tashkent, 10, 25))
	require.NoError(t, err)
	assert.Equal(t, f.farmer.ID, r.OwnerID)

	// Non-admins cannot plant on behalf of someone else.
	in := f.input(f.cotton, f.tashkent, 1, 1)
	in.OwnerID = &f.other.ID
	_, err = f.svc.Create(ctx, f.farmer, in)
	assert.ErrorIs(t, err, ErrNotOwner)

	r, err = f.svc.Create(ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, r.OwnerID)

	unknown := uuid.New()
	in.OwnerID = &unknown
	_, err = f.svc.Create(ctx, f.admin, in)
	assert.ErrorIs(t, err, ErrUnknownOwner)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := uuid.New()

	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"no product", Input{RegionID: &f.tashkent.ID, PlantingArea: 1, ExpectingWeight: 1}, ErrProductRequired},
		{"no region", Input{ProductID: &f.cotton.ID, PlantingArea: 1, ExpectingWeight: 1}, ErrRegionRequired},
		{"unknown product", Input{ProductID: &missing, RegionID: &f.tashkent.ID, PlantingArea: 1, ExpectingWeight: 1}, ErrUnknownProduct},
		{"unknown region", Input{ProductID: &f.cotton.ID, RegionID: &missing, PlantingArea: 1, ExpectingWeight: 1}, ErrUnknownRegion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.farmer, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.svc.Create(ctx, f.farmer, f.input(f.cotton, f.tashkent, 0, 1))
	assert.Error(t, err)
	_, err = f.svc.Create(ctx, f.farmer, f.input(f.cotton, f.tashkent, 1, 1.0005))
	assert.Error(t, err)
}

func TestList_ScopedToActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.farmer, f.input(f.cotton, f.tashkent, 10, 25))
	require.NoError(t, err)
	theirs, err := f.svc.Create(ctx, f.other, f.input(f.wheat, f.samarkand, 4, 8))
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, f.farmer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.svc.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.Get(ctx, f.farmer, theirs.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	got, err := f.svc.Get(ctx, f.admin, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, theirs.ID, got.ID)
}

func TestUpdatePatchDelete_OwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Create(ctx, f.farmer, f.input(f.cotton, f.tashkent, 10, 25))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.other, r.ID, f.input(f.wheat, f.tashkent, 1, 1))
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := f.svc.Update(ctx, f.farmer, r.ID, f.input(f.wheat, f.samarkand, 12.5, 30))
	require.NoError(t, err)
	assert.Equal(t, f.wheat.ID, *updated.ProductID)
	assert.Equal(t, 12.5, updated.PlantingArea)
	assert.Equal(t, f.farmer.ID, updated.OwnerID)

	weight := 40.125
	patched, err := f.svc.Patch(ctx, f.admin, r.ID, Patch{ExpectingWeight: &weight})
	require.NoError(t, err)
	assert.Equal(t, 40.125, patched.ExpectingWeight)
	assert.Equal(t, 12.5, patched.PlantingArea)
	assert.Equal(t, f.samarkand.ID, *patched.RegionID)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.other, r.ID), ErrNotOwner)
	require.NoError(t, f.svc.Delete(ctx, f.farmer, r.ID))
	_, err = f.svc.Get(ctx, f.admin, r.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMutations_LoggedUnderActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input(f.cotton, f.tashkent, 10, 25)
	in.OwnerID = &f.farmer.ID
	r, err := f.svc.Create(ctx, f.admin, in)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.admin, r.ID))

	entries, err := f.log.Recent(ctx, f.admin.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, activity.ActionDelete, entries[0].Action)
	assert.Equal(t, activity.ActionCreate, entries[1].Action)
	assert.Equal(t, "PlantedProduct", entries[1].ModelName)
	assert.Equal(t, "Product name: Cotton, Product owner: Bobur, Region: Tashkent", entries[1].ObjectName)
	assert.Equal(t, entries[1].ObjectName, entries[0].ObjectName)

	owned, err := f.log.Recent(ctx, f.farmer.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestDeletedCatalogEntries_ReadAsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.farmer, f.input(f.cotton, f.tashkent, 10, 25))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.farmer, f.input(f.wheat, f.tashkent, 5, 5))
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteProduct(ctx, f.admin, f.cotton.ID))

	rows, err := f.svc.ListWithNames(ctx, analytics.Filter{})
	require.NoError(t, err)
	groups := analytics.ByProduct(rows)
	require.Len(t, groups, 2)
	assert.Equal(t, analytics.UnknownProduct, groups[0].Name)
	assert.Equal(t, 2.5, groups[0].WPH)
	assert.Equal(t, "Wheat", groups[1].Name)

	rows, err = f.svc.ListWithNames(ctx, analytics.Filter{ProductID: &f.wheat.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestListFarmers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.farmer, f.input(f.cotton, f.tashkent, 4, 10))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.admin, f.input(f.wheat, f.tashkent, 1, 1))
	require.NoError(t, err)

	farmers, err := f.svc.ListFarmers(ctx)
	require.NoError(t, err)
	require.Len(t, farmers, 2)

	byID := map[uuid.UUID]Farmer{}
	for _, fm := range farmers {
		byID[fm.ID] = fm
	}
	bobur := byID[f.farmer.ID]
	require.Len(t, bobur.PlantedProducts, 1)
	assert.Equal(t, "Cotton", bobur.PlantedProducts[0].Product.Name)
	assert.Equal(t, 2.5, bobur.PlantedProducts[0].WPH)

	empty := byID[f.other.ID]
	assert.NotNil(t, empty.PlantedProducts)
	assert.Empty(t, empty.PlantedProducts)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{"0.001", 0.001, true},
		{"123456.789", 123456.789, true},
		{"1.0001", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"1e3", 0, false},
		{"1000000000000", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity("planting_area", json.Number(tt.in))
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
