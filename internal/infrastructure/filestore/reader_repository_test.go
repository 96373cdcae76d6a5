package filestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kenshin-api/internal/domain"
	"github.com/jhoicas/Kenshin-api/internal/domain/entity"
	"github.com/jhoicas/Kenshin-api/internal/infrastructure/filestore"
)

func TestReaderRepository_CreateYBuscar(t *testing.T) {
	repo := filestore.NewReaderRepository(t.TempDir())

	require.NoError(t, repo.Create(&entity.Reader{ID: "r-1", Username: "juan", Name: "Juan", Role: entity.RoleReader}))

	got, err := repo.FindByUsername("JUAN")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r-1", got.ID)

	byID, err := repo.GetByID("r-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Juan", byID.Name)
}

func TestReaderRepository_UsernameDuplicado(t *testing.T) {
	repo := filestore.NewReaderRepository(t.TempDir())
	require.NoError(t, repo.Create(&entity.Reader{ID: "r-1", Username: "juan"}))

	err := repo.Create(&entity.Reader{ID: "r-2", Username: "Juan"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestReaderRepository_NoExiste(t *testing.T) {
	repo := filestore.NewReaderRepository(t.TempDir())

	got, err := repo.GetByID("nada")
	require.NoError(t, err)
	assert.Nil(t, got)
}
