package handlers

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ironclub/gym/internal/models"
)

// openTestDB returns an isolated in-file SQLite database in a temp directory.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.ClassOccurrence{},
		&models.Attendee{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

// TestOccupancyAggregation verifies the single GROUP BY query behind
// AdminOccupancy counts attendee rows and check-ins correctly.
func TestOccupancyAggregation(t *testing.T) {
	gdb := openTestDB(t)

	cls := models.ClassOccurrence{Name: "CROSSFIT 07:00", Weekday: 1, StartTime: "07:00", Capacity: 10, BookedCount: 3}
	gdb.Create(&cls)

	now := time.Now()
	atts := []models.Attendee{
		{ClassID: cls.ID, UserID: 1, Name: "A", Code: "BK-00000001"},
		{ClassID: cls.ID, UserID: 2, Name: "B", Code: "BK-00000002"},
		{ClassID: cls.ID, UserID: 3, Name: "C", Code: "BK-00000003", CheckInAt: &now},
	}
	for i := range atts {
		gdb.Create(&atts[i])
	}

	aggs, err := occupancyAggregation(gdb)
	if err != nil {
		t.Fatalf("aggregation query: %v", err)
	}
	a, ok := aggs[cls.ID]
	if !ok {
		t.Fatal("no aggregation row for class")
	}
	if a.Attendees != 3 {
		t.Errorf("Attendees: want 3, got %d", a.Attendees)
	}
	if a.CheckedIn != 1 {
		t.Errorf("CheckedIn: want 1, got %d", a.CheckedIn)
	}

	// fill percent uses attendee rows, not the counter
	fill := int(a.Attendees * 100 / int64(cls.Capacity))
	if fill != 30 {
		t.Errorf("FillPercent: want 30, got %d", fill)
	}
}

// TestOccupancyAggregation_MultiClass ensures rows from different classes
// remain segregated after the GROUP BY.
func TestOccupancyAggregation_MultiClass(t *testing.T) {
	gdb := openTestDB(t)

	cls1 := models.ClassOccurrence{Name: "C1", Weekday: 1, StartTime: "07:00", Capacity: 5}
	cls2 := models.ClassOccurrence{Name: "C2", Weekday: 2, StartTime: "18:00", Capacity: 5}
	gdb.Create(&cls1)
	gdb.Create(&cls2)

	gdb.Create(&models.Attendee{ClassID: cls1.ID, UserID: 1, Name: "A", Code: "BK-00000011"})
	gdb.Create(&models.Attendee{ClassID: cls2.ID, UserID: 1, Name: "A", Code: "BK-00000012"})
	gdb.Create(&models.Attendee{ClassID: cls2.ID, UserID: 2, Name: "B", Code: "BK-00000013"})

	aggs, err := occupancyAggregation(gdb)
	if err != nil {
		t.Fatalf("aggregation query: %v", err)
	}
	if aggs[cls1.ID].Attendees != 1 {
		t.Errorf("cls1 Attendees: want 1, got %d", aggs[cls1.ID].Attendees)
	}
	if aggs[cls2.ID].Attendees != 2 {
		t.Errorf("cls2 Attendees: want 2, got %d", aggs[cls2.ID].Attendees)
	}
}

func TestMakeFlash_KnownAndVerbatim(t *testing.T) {
	req := newGetRequest(t, "/schedule?error=class_full")
	f := MakeFlash(req, "", "")
	if f == nil || f.Kind != "error" || f.Text != errText["class_full"] {
		t.Fatalf("known key not translated: %+v", f)
	}

	// unknown keys pass through verbatim (attributable identity errors)
	req = newGetRequest(t, "/competitions?error=national+id+V-111+is+already+registered+for+this+competition")
	f = MakeFlash(req, "", "")
	if f == nil || f.Text != "national id V-111 is already registered for this competition" {
		t.Fatalf("verbatim error lost: %+v", f)
	}

	req = newGetRequest(t, "/my?ok=canceled")
	f = MakeFlash(req, "", "")
	if f == nil || f.Kind != "ok" {
		t.Fatalf("ok flash missing: %+v", f)
	}
}
