package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

type MemberInput struct {
	Name       string
	NationalID string
	UserID     *uint
}

type RegistrationInput struct {
	CompetitionID uint
	User          models.User
	Phone         string
	TeamName      string
	Members       []MemberInput // excluding the leader
}

// RegisterForCompetition runs the two-phase check-then-commit. Phase 1 scans
// the existing registrations outside the write transaction so identity
// conflicts are reported early with an attributable message. Phase 2 repeats
// the scan and the capacity check inside the transaction, so a registration
// racing in between the phases is still caught before commit.
func RegisterForCompetition(in RegistrationInput) (*models.CompetitionRegistration, error) {
	var comp models.Competition
	if err := db.Conn().First(&comp, in.CompetitionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	ids, nats, err := collectIdentities(comp, in)
	if err != nil {
		return nil, err
	}
	if err := findIdentityConflict(db.Conn(), comp.ID, ids, nats); err != nil {
		return nil, err
	}

	var reg *models.CompetitionRegistration
	err = db.Conn().Transaction(func(tx *gorm.DB) error {
		r, err := RegisterForCompetitionTx(tx, in)
		reg = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// RegisterForCompetitionTx performs the full validation and the atomic commit
// inside an existing TX.
func RegisterForCompetitionTx(tx *gorm.DB, in RegistrationInput) (*models.CompetitionRegistration, error) {
	var comp models.Competition
	if err := tx.First(&comp, in.CompetitionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	ids, nats, err := collectIdentities(comp, in)
	if err != nil {
		return nil, err
	}
	if err := findIdentityConflict(tx, comp.ID, ids, nats); err != nil {
		return nil, err
	}
	if !comp.Unlimited && comp.RegisteredCount >= comp.Capacity {
		return nil, ErrCompetitionFull
	}

	status := "confirmed"
	if comp.Paid {
		status = "pending_payment"
	}

	reg := models.CompetitionRegistration{
		ID:               uuid.NewString(),
		CompetitionID:    comp.ID,
		UserID:           in.User.ID,
		LeaderName:       strings.TrimSpace(in.User.Name),
		LeaderNationalID: NormNationalID(in.User.NationalID),
		LeaderPhone:      NormPhone(in.Phone),
		TeamName:         strings.TrimSpace(in.TeamName),
		Status:           status,
	}
	for i, m := range in.Members {
		reg.Members = append(reg.Members, models.TeamMember{
			Position:   i + 1,
			Name:       strings.TrimSpace(m.Name),
			NationalID: NormNationalID(m.NationalID),
			UserID:     m.UserID,
		})
	}
	if err := tx.Create(&reg).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Competition{}).
		Where("id = ?", comp.ID).
		UpdateColumn("registered_count", gorm.Expr("registered_count + 1")).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// collectIdentities validates the payload and returns the user-id and
// national-id sets it claims. Duplicates inside the payload itself are
// conflicts too.
func collectIdentities(comp models.Competition, in RegistrationInput) (map[uint]bool, map[string]bool, error) {
	got := 1 + len(in.Members)
	if comp.Type == "team" {
		if got != comp.TeamSize {
			return nil, nil, &TeamSizeError{Want: comp.TeamSize, Got: got}
		}
	} else if len(in.Members) > 0 {
		return nil, nil, &TeamSizeError{Want: 1, Got: got}
	}

	leaderNat := NormNationalID(in.User.NationalID)
	if leaderNat == "" {
		return nil, nil, ErrInvalidNationalID
	}

	ids := map[uint]bool{in.User.ID: true}
	nats := map[string]bool{leaderNat: true}
	for _, m := range in.Members {
		nat := NormNationalID(m.NationalID)
		if nat == "" {
			return nil, nil, ErrInvalidNationalID
		}
		if nats[nat] {
			return nil, nil, &IdentityConflictError{Kind: "national_id", Value: nat}
		}
		nats[nat] = true
		if m.UserID != nil {
			if ids[*m.UserID] {
				return nil, nil, &IdentityConflictError{Kind: "user"}
			}
			ids[*m.UserID] = true
		}
	}
	return ids, nats, nil
}

// findIdentityConflict scans every registration of the competition, leader
// and members alike, for any of the claimed identities. Uniqueness spans the
// nested member lists, which the store cannot enforce declaratively.
func findIdentityConflict(q *gorm.DB, compID uint, ids map[uint]bool, nats map[string]bool) error {
	var regs []models.CompetitionRegistration
	if err := q.Preload("Members").Where("competition_id = ?", compID).Find(&regs).Error; err != nil {
		return err
	}
	for _, r := range regs {
		if ids[r.UserID] {
			return &IdentityConflictError{Kind: "user"}
		}
		if nat := NormNationalID(r.LeaderNationalID); nat != "" && nats[nat] {
			return &IdentityConflictError{Kind: "national_id", Value: nat}
		}
		for _, m := range r.Members {
			if m.UserID != nil && ids[*m.UserID] {
				return &IdentityConflictError{Kind: "user"}
			}
			if nat := NormNationalID(m.NationalID); nat != "" && nats[nat] {
				return &IdentityConflictError{Kind: "national_id", Value: nat}
			}
		}
	}
	return nil
}

// UserRegistrations returns the competition registrations a user belongs to,
// as leader or as a listed team member (matched by national id).
func UserRegistrations(q *gorm.DB, userID uint, nationalID string) ([]models.CompetitionRegistration, error) {
	var asLeader []models.CompetitionRegistration
	if err := q.Preload("Members").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&asLeader).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(asLeader))
	out := asLeader
	for _, r := range asLeader {
		seen[r.ID] = true
	}

	nat := NormNationalID(nationalID)
	if nat != "" {
		var regIDs []string
		if err := q.Model(&models.TeamMember{}).
			Where("national_id = ?", nat).
			Pluck("registration_id", &regIDs).Error; err != nil {
			return nil, err
		}
		if len(regIDs) > 0 {
			var asMember []models.CompetitionRegistration
			if err := q.Preload("Members").
				Where("id IN ?", regIDs).
				Order("created_at desc").
				Find(&asMember).Error; err != nil {
				return nil, err
			}
			for _, r := range asMember {
				if !seen[r.ID] {
					out = append(out, r)
					seen[r.ID] = true
				}
			}
		}
	}
	return out, nil
}
