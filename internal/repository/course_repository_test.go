package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The row lock only exists on servers with row-level locking, so the query is
// rendered against the mysql dialect without connecting.
func TestLockByIDTakesRowLock(t *testing.T) {
	rec := logger.Recorder.New()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "mdla:mdla@tcp(127.0.0.1:3306)/mdla?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)

	_, _ = NewCourseRepository(db).LockByID(7)
	assert.Contains(t, rec.SQL, "FROM `courses`")
	assert.Contains(t, rec.SQL, "`courses`.`id` = 7")
	assert.Contains(t, rec.SQL, "FOR UPDATE")
}
