package services

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"gorm.io/gorm"

	"github.com/ironclub/gym/internal/models"
)

var bookingCodeRE = regexp.MustCompile(`^BK-[0-9A-F]{8}$`)

func seedClass(t *testing.T, gdb *gorm.DB, capacity int, unlimited bool) models.ClassOccurrence {
	t.Helper()
	c := models.ClassOccurrence{
		Weekday:        1,
		StartTime:      "07:00",
		Name:           "CROSSFIT 07:00",
		InstructorName: "Carlos",
		Capacity:       capacity,
		Unlimited:      unlimited,
	}
	if err := gdb.Create(&c).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}
	return c
}

func countAttendees(t *testing.T, gdb *gorm.DB, classID uint) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(&models.Attendee{}).Where("class_id = ?", classID).Count(&n).Error; err != nil {
		t.Fatalf("count attendees: %v", err)
	}
	return n
}

func bookedCount(t *testing.T, gdb *gorm.DB, classID uint) int {
	t.Helper()
	var c models.ClassOccurrence
	if err := gdb.First(&c, classID).Error; err != nil {
		t.Fatalf("reload class: %v", err)
	}
	return c.BookedCount
}

func TestBookClass_Success(t *testing.T) {
	gdb := openTestDB(t)
	class := seedClass(t, gdb, 20, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	att, err := BookClassTx(gdb, class.ID, user)
	if err != nil {
		t.Fatalf("BookClassTx: %v", err)
	}
	if !bookingCodeRE.MatchString(att.Code) {
		t.Errorf("code %q does not match BK-[0-9A-F]{8}", att.Code)
	}
	if got := bookedCount(t, gdb, class.ID); got != 1 {
		t.Errorf("booked count: want 1, got %d", got)
	}
	if got := countAttendees(t, gdb, class.ID); got != 1 {
		t.Errorf("attendee rows: want 1, got %d", got)
	}
}

func TestBookClass_NotFound(t *testing.T) {
	gdb := openTestDB(t)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	if _, err := BookClassTx(gdb, 999, user); !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("want ErrClassNotFound, got %v", err)
	}
}

// Capacity invariant: booked count never exceeds capacity, and every accepted
// booking corresponds to exactly one attendee row.
func TestBookClass_CapacityInvariant(t *testing.T) {
	gdb := openTestDB(t)
	class := seedClass(t, gdb, 2, false)

	accepted := 0
	for i := 0; i < 5; i++ {
		u := seedUser(t, gdb,
			fmt.Sprintf("User %d", i),
			fmt.Sprintf("u%d@example.com", i),
			fmt.Sprintf("V-1000000%d", i))
		_, err := BookClassTx(gdb, class.ID, u)
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrClassFull):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if accepted != 2 {
		t.Errorf("accepted bookings: want 2, got %d", accepted)
	}
	if got := bookedCount(t, gdb, class.ID); got != 2 {
		t.Errorf("booked count: want 2, got %d", got)
	}
	if got := countAttendees(t, gdb, class.ID); got != 2 {
		t.Errorf("attendee rows: want 2, got %d", got)
	}
}

func TestBookClass_LastSeat(t *testing.T) {
	gdb := openTestDB(t)
	class := seedClass(t, gdb, 20, false)
	gdb.Model(&class).UpdateColumn("booked_count", 19)

	a := seedUser(t, gdb, "A", "a@example.com", "V-11111111")
	b := seedUser(t, gdb, "B", "b@example.com", "V-22222222")

	if _, err := BookClassTx(gdb, class.ID, a); err != nil {
		t.Fatalf("first booking should win the last seat: %v", err)
	}
	if _, err := BookClassTx(gdb, class.ID, b); !errors.Is(err, ErrClassFull) {
		t.Fatalf("second booking: want ErrClassFull, got %v", err)
	}
	if got := bookedCount(t, gdb, class.ID); got != 20 {
		t.Errorf("booked count: want 20, got %d", got)
	}
}

func TestBookClass_Duplicate(t *testing.T) {
	gdb := openTestDB(t)
	class := seedClass(t, gdb, 10, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	if _, err := BookClassTx(gdb, class.ID, user); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := BookClassTx(gdb, class.ID, user); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("want ErrAlreadyBooked, got %v", err)
	}
	if got := bookedCount(t, gdb, class.ID); got != 1 {
		t.Errorf("booked count changed on rejected duplicate: %d", got)
	}
}

func TestBookClass_Unlimited(t *testing.T) {
	gdb := openTestDB(t)
	class := seedClass(t, gdb, 0, true)

	for i := 0; i < 3; i++ {
		u := seedUser(t, gdb,
			fmt.Sprintf("User %d", i),
			fmt.Sprintf("u%d@example.com", i),
			fmt.Sprintf("V-2000000%d", i))
		if _, err := BookClassTx(gdb, class.ID, u); err != nil {
			t.Fatalf("unlimited class rejected booking %d: %v", i, err)
		}
	}
	if got := bookedCount(t, gdb, class.ID); got != 3 {
		t.Errorf("booked count: want 3, got %d", got)
	}
}

// Cancellation is idempotent: cancelling twice, or cancelling something that
// never existed, leaves the counter in sync with the attendee rows.
func TestCancelBooking_Idempotent(t *testing.T) {
	gdb := openTestDB(t)
	class := seedClass(t, gdb, 10, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")
	other := seedUser(t, gdb, "Eva", "eva@example.com", "V-22222222")

	gdb.Model(&class).UpdateColumn("booked_count", 6)
	if _, err := BookClassTx(gdb, class.ID, user); err != nil {
		t.Fatalf("book: %v", err)
	}
	if got := bookedCount(t, gdb, class.ID); got != 7 {
		t.Fatalf("booked count after booking: want 7, got %d", got)
	}

	if _, err := BookClassTx(gdb, class.ID, user); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("want ErrAlreadyBooked, got %v", err)
	}
	if err := CancelBookingTx(gdb, class.ID, user.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := bookedCount(t, gdb, class.ID); got != 6 {
		t.Errorf("booked count after cancel: want 6, got %d", got)
	}

	// second cancel is a no-op
	if err := CancelBookingTx(gdb, class.ID, user.ID); err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	if got := bookedCount(t, gdb, class.ID); got != 6 {
		t.Errorf("booked count after repeat cancel: want 6, got %d", got)
	}

	// cancelling a booking that never existed is a no-op too
	if err := CancelBookingTx(gdb, class.ID, other.ID); err != nil {
		t.Fatalf("cancel of non-existent booking: %v", err)
	}
	if got := bookedCount(t, gdb, class.ID); got != 6 {
		t.Errorf("booked count after no-op cancel: want 6, got %d", got)
	}
}

func TestCancelBooking_CounterNeverNegative(t *testing.T) {
	gdb := openTestDB(t)
	class := seedClass(t, gdb, 5, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	if _, err := BookClassTx(gdb, class.ID, user); err != nil {
		t.Fatalf("book: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := CancelBookingTx(gdb, class.ID, user.ID); err != nil {
			t.Fatalf("cancel %d: %v", i, err)
		}
	}
	if got := bookedCount(t, gdb, class.ID); got != 0 {
		t.Errorf("booked count: want 0, got %d", got)
	}
}

// Counter consistency: after an arbitrary mix of operations the counter
// equals the number of attendee rows.
func TestCounterMatchesAttendeeRows(t *testing.T) {
	gdb := openTestDB(t)
	class := seedClass(t, gdb, 3, false)

	users := make([]models.User, 4)
	for i := range users {
		users[i] = seedUser(t, gdb,
			fmt.Sprintf("User %d", i),
			fmt.Sprintf("m%d@example.com", i),
			fmt.Sprintf("V-3000000%d", i))
	}

	_, _ = BookClassTx(gdb, class.ID, users[0])
	_, _ = BookClassTx(gdb, class.ID, users[1])
	_ = CancelBookingTx(gdb, class.ID, users[0].ID)
	_, _ = BookClassTx(gdb, class.ID, users[2])
	_, _ = BookClassTx(gdb, class.ID, users[3])
	_, _ = BookClassTx(gdb, class.ID, users[1]) // duplicate, rejected
	_ = CancelBookingTx(gdb, class.ID, users[0].ID) // no-op

	rows := countAttendees(t, gdb, class.ID)
	if got := bookedCount(t, gdb, class.ID); int64(got) != rows {
		t.Errorf("booked count %d != attendee rows %d", got, rows)
	}
}
