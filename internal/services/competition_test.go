package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ironclub/gym/internal/models"
)

func seedCompetition(t *testing.T, gdb *gorm.DB, typ string, teamSize, capacity int, unlimited, paid bool) models.Competition {
	t.Helper()
	c := models.Competition{
		Name:      "Summer Throwdown",
		Date:      time.Now().AddDate(0, 1, 0),
		Type:      typ,
		TeamSize:  teamSize,
		Category:  "mixed",
		Capacity:  capacity,
		Unlimited: unlimited,
		Paid:      paid,
		Price:     25,
		Currency:  "USD",
	}
	if err := gdb.Create(&c).Error; err != nil {
		t.Fatalf("seed competition: %v", err)
	}
	return c
}

func registeredCount(t *testing.T, gdb *gorm.DB, compID uint) int {
	t.Helper()
	var c models.Competition
	if err := gdb.First(&c, compID).Error; err != nil {
		t.Fatalf("reload competition: %v", err)
	}
	return c.RegisteredCount
}

func TestRegister_Individual(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "individual", 0, 50, false, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	reg, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          user,
		Phone:         "0412 123 4567",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.ID == "" {
		t.Error("registration id not assigned")
	}
	if reg.Status != "confirmed" {
		t.Errorf("status: want confirmed, got %q", reg.Status)
	}
	if reg.LeaderNationalID != "V-11111111" {
		t.Errorf("leader national id not normalized: %q", reg.LeaderNationalID)
	}
	if got := registeredCount(t, gdb, comp.ID); got != 1 {
		t.Errorf("registered count: want 1, got %d", got)
	}
}

func TestRegister_PaidCompetitionPendsPayment(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "individual", 0, 50, false, true)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	reg, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp.ID, User: user})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Status != "pending_payment" {
		t.Errorf("status: want pending_payment, got %q", reg.Status)
	}
}

func TestRegister_NotFound(t *testing.T) {
	gdb := openTestDB(t)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	_, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: 404, User: user})
	if !errors.Is(err, ErrCompetitionNotFound) {
		t.Fatalf("want ErrCompetitionNotFound, got %v", err)
	}
}

// A team competition rejects a payload whose leader+members count does not
// equal the configured team size, before any write occurs.
func TestRegister_TeamSizeMismatch(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "team", 4, 10, false, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	_, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          user,
		TeamName:      "Los Titanes",
		Members: []MemberInput{
			{Name: "B", NationalID: "V-22222222"},
			{Name: "C", NationalID: "V-33333333"},
		},
	})
	var tsErr *TeamSizeError
	if !errors.As(err, &tsErr) {
		t.Fatalf("want TeamSizeError, got %v", err)
	}
	if tsErr.Want != 4 || tsErr.Got != 3 {
		t.Errorf("TeamSizeError = %+v, want Want=4 Got=3", tsErr)
	}
	if got := registeredCount(t, gdb, comp.ID); got != 0 {
		t.Errorf("registered count changed on rejected payload: %d", got)
	}
	var rows int64
	gdb.Model(&models.CompetitionRegistration{}).Count(&rows)
	if rows != 0 {
		t.Errorf("registration rows created on rejected payload: %d", rows)
	}
}

func TestRegister_IndividualRejectsMembers(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "individual", 0, 10, false, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	_, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          user,
		Members:       []MemberInput{{Name: "B", NationalID: "V-22222222"}},
	})
	var tsErr *TeamSizeError
	if !errors.As(err, &tsErr) {
		t.Fatalf("want TeamSizeError, got %v", err)
	}
}

func TestRegister_Full(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "individual", 0, 1, false, false)
	a := seedUser(t, gdb, "A", "a@example.com", "V-11111111")
	b := seedUser(t, gdb, "B", "b@example.com", "V-22222222")

	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp.ID, User: a}); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp.ID, User: b})
	if !errors.Is(err, ErrCompetitionFull) {
		t.Fatalf("want ErrCompetitionFull, got %v", err)
	}
	if got := registeredCount(t, gdb, comp.ID); got != 1 {
		t.Errorf("registered count: want 1, got %d", got)
	}
}

func TestRegister_Unlimited(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "individual", 0, 0, true, false)
	a := seedUser(t, gdb, "A", "a@example.com", "V-11111111")
	b := seedUser(t, gdb, "B", "b@example.com", "V-22222222")

	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp.ID, User: a}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp.ID, User: b}); err != nil {
		t.Fatalf("second: %v", err)
	}
}

func TestRegister_DuplicateUser(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "individual", 0, 10, false, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp.ID, User: user}); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp.ID, User: user})
	var conflict *IdentityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want IdentityConflictError, got %v", err)
	}
	if conflict.Kind != "user" {
		t.Errorf("conflict kind: want user, got %q", conflict.Kind)
	}
}

// A national id listed anywhere in an earlier registration, leader or member,
// blocks a later registration that lists it — and the error names the id.
func TestRegister_NationalIDCollision(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "team", 2, 10, false, false)
	leader1 := seedUser(t, gdb, "Ana", "ana@example.com", "V-111")
	leader2 := seedUser(t, gdb, "Eva", "eva@example.com", "V-44444444")

	// NormNationalID requires 5+ digits; use a realistic id for the test.
	gdb.Model(&leader1).Update("national_id", "V-11100")

	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          models.User{ID: leader1.ID, Name: "Ana", NationalID: "V-11100"},
		Members:       []MemberInput{{Name: "B", NationalID: "V-22222222"}},
	}); err != nil {
		t.Fatalf("first registration: %v", err)
	}

	_, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          leader2,
		Members:       []MemberInput{{Name: "Sneaky", NationalID: "v 11.100"}}, // same id, messy format
	})
	var conflict *IdentityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want IdentityConflictError, got %v", err)
	}
	if conflict.Kind != "national_id" || conflict.Value != "V-11100" {
		t.Errorf("conflict = %+v, want national_id V-11100", conflict)
	}
	if got := registeredCount(t, gdb, comp.ID); got != 1 {
		t.Errorf("registered count: want 1, got %d", got)
	}
}

func TestRegister_MemberCollidesWithEarlierMember(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "team", 2, 10, false, false)
	l1 := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")
	l2 := seedUser(t, gdb, "Eva", "eva@example.com", "V-22222222")

	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          l1,
		Members:       []MemberInput{{Name: "M", NationalID: "V-55555555"}},
	}); err != nil {
		t.Fatalf("first registration: %v", err)
	}

	_, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          l2,
		Members:       []MemberInput{{Name: "M again", NationalID: "V-55555555"}},
	})
	var conflict *IdentityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want IdentityConflictError, got %v", err)
	}
	if conflict.Value != "V-55555555" {
		t.Errorf("conflict value: want V-55555555, got %q", conflict.Value)
	}
}

func TestRegister_PayloadInternalDuplicate(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "team", 3, 10, false, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	_, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          user,
		Members: []MemberInput{
			{Name: "B", NationalID: "V-22222222"},
			{Name: "B twice", NationalID: "V-22222222"},
		},
	})
	var conflict *IdentityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want IdentityConflictError, got %v", err)
	}
}

func TestRegister_InvalidNationalID(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "individual", 0, 10, false, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "nope")

	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp.ID, User: user}); !errors.Is(err, ErrInvalidNationalID) {
		t.Fatalf("want ErrInvalidNationalID, got %v", err)
	}
}

// Per-competition scope: the same identity may register for two different
// competitions.
func TestRegister_ScopedToOneCompetition(t *testing.T) {
	gdb := openTestDB(t)
	comp1 := seedCompetition(t, gdb, "individual", 0, 10, false, false)
	comp2 := seedCompetition(t, gdb, "individual", 0, 10, false, false)
	user := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")

	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp1.ID, User: user}); err != nil {
		t.Fatalf("comp1: %v", err)
	}
	if _, err := RegisterForCompetitionTx(gdb, RegistrationInput{CompetitionID: comp2.ID, User: user}); err != nil {
		t.Fatalf("comp2: %v", err)
	}
}

// UserRegistrations finds registrations where the user is the leader and also
// those where their national id appears only in the member list.
func TestUserRegistrations_IncludesMemberMatches(t *testing.T) {
	gdb := openTestDB(t)
	comp := seedCompetition(t, gdb, "team", 2, 10, false, false)
	leader := seedUser(t, gdb, "Ana", "ana@example.com", "V-11111111")
	member := seedUser(t, gdb, "Eva", "eva@example.com", "V-22222222")

	reg, err := RegisterForCompetitionTx(gdb, RegistrationInput{
		CompetitionID: comp.ID,
		User:          leader,
		Members:       []MemberInput{{Name: "Eva", NationalID: "V-22222222", UserID: &member.ID}},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := UserRegistrations(gdb, member.ID, member.NationalID)
	if err != nil {
		t.Fatalf("UserRegistrations: %v", err)
	}
	if len(got) != 1 || got[0].ID != reg.ID {
		t.Fatalf("member lookup: want [%s], got %d rows", reg.ID, len(got))
	}

	got, err = UserRegistrations(gdb, leader.ID, leader.NationalID)
	if err != nil {
		t.Fatalf("UserRegistrations leader: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("leader lookup: want 1 row, got %d", len(got))
	}
}
