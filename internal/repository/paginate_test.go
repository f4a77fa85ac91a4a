package repository

import (
	"fmt"
	"testing"

	"mdla_service/internal/model"
	"mdla_service/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPaginate(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ContactMessage{}))

	for i := 0; i < 25; i++ {
		require.NoError(t, db.Create(&model.ContactMessage{
			Name: fmt.Sprintf("n%d", i), Email: "a@example.com", Message: "m", Status: model.ContactNew,
		}).Error)
	}
	repo := NewContactRepository(db)

	msgs, total, err := repo.List("", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, msgs, 10)

	msgs, _, err = repo.List("", 3, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 5)

	// zero values from direct callers still return a full first page
	msgs, _, err = repo.List("", 0, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, util.DefaultPageSize)

	msgs, _, err = repo.List(model.ContactRead, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
