package sequence

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.Exec(`CREATE TABLE pending_orders (id INTEGER PRIMARY KEY, product_id INTEGER NOT NULL, amount REAL NOT NULL)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestNextID_EmptyTableStartsAtOne(t *testing.T) {
	gdb := openTestDB(t)

	id, err := NextID(context.Background(), gdb, &models.PendingOrder{})
	if err != nil {
		t.Fatalf("NextID returned error: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected 1 for empty table, got %d", id)
	}
}

func TestNextID_IsMaxPlusOne(t *testing.T) {
	gdb := openTestDB(t)

	rows := []models.PendingOrder{
		{ID: 3, ProductID: 1, Amount: 2},
		{ID: 7, ProductID: 1, Amount: 4},
	}
	for i := range rows {
		if err := gdb.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed row: %v", err)
		}
	}

	id, err := NextID(context.Background(), gdb, &models.PendingOrder{})
	if err != nil {
		t.Fatalf("NextID returned error: %v", err)
	}
	if id != 8 {
		t.Fatalf("expected max+1 = 8, got %d", id)
	}
}

func TestNextID_ReusesFreedMax(t *testing.T) {
	gdb := openTestDB(t)

	row := models.PendingOrder{ID: 5, ProductID: 1, Amount: 1}
	if err := gdb.Create(&row).Error; err != nil {
		t.Fatalf("seed row: %v", err)
	}
	if err := gdb.Delete(&models.PendingOrder{}, "id = ?", 5).Error; err != nil {
		t.Fatalf("delete row: %v", err)
	}

	id, err := NextID(context.Background(), gdb, &models.PendingOrder{})
	if err != nil {
		t.Fatalf("NextID returned error: %v", err)
	}
	if id != 1 {
		t.Fatalf("deleting the max row frees its range; expected 1, got %d", id)
	}
}

func TestNextID_NilTx(t *testing.T) {
	if _, err := NextID(context.Background(), nil, &models.PendingOrder{}); err == nil {
		t.Fatal("expected error for nil tx")
	}
}
