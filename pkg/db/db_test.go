package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testRow struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

// Every pooled connection must see the same schema, including reads
// issued outside an open transaction.
func TestNewTestSharedAcrossConnections(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&testRow{}))

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&testRow{ID: 1, Name: "inside"}).Error; err != nil {
			return err
		}
		// Read through the root handle while the transaction pins its
		// own connection. The table must exist on that connection too.
		var count int64
		return conn.Model(&testRow{}).Count(&count).Error
	})
	require.NoError(t, err)

	var stored testRow
	require.NoError(t, conn.First(&stored).Error)
	assert.Equal(t, "inside", stored.Name)
}

func TestNewTestIsolatedPerCall(t *testing.T) {
	first, err := NewTest()
	require.NoError(t, err)
	require.NoError(t, first.AutoMigrate(&testRow{}))
	require.NoError(t, first.Create(&testRow{ID: 1, Name: "first"}).Error)

	second, err := NewTest()
	require.NoError(t, err)
	require.NoError(t, second.AutoMigrate(&testRow{}))

	var count int64
	require.NoError(t, second.Model(&testRow{}).Count(&count).Error)
	assert.Zero(t, count)
}
