package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

// membershipPeriod is how long one approved membership payment keeps the
// member active.
const membershipPeriod = 30 * 24 * time.Hour

type ReportInput struct {
	UserID         uint
	Purpose        string // membership | competition
	RegistrationID *string
	Reference      string
	Method         string
	Amount         float64
	Currency       string
}

var ErrInvalidReport = errors.New("invalid payment report")

// SubmitPaymentReport records a manually reported payment for later admin
// review. No money is processed here.
func SubmitPaymentReport(in ReportInput) (*models.PaymentReport, error) {
	in.Reference = strings.TrimSpace(in.Reference)
	if in.Reference == "" || in.Amount <= 0 {
		return nil, ErrInvalidReport
	}
	switch in.Purpose {
	case "membership":
	case "competition":
		if in.RegistrationID == nil || *in.RegistrationID == "" {
			return nil, ErrInvalidReport
		}
	default:
		return nil, ErrInvalidReport
	}

	report := models.PaymentReport{
		UserID:         in.UserID,
		Purpose:        in.Purpose,
		RegistrationID: in.RegistrationID,
		Reference:      in.Reference,
		Method:         in.Method,
		Amount:         in.Amount,
		Currency:       in.Currency,
		Status:         "pending",
	}
	if err := db.Conn().Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ReviewPaymentReport applies an admin decision. Approval activates the
// membership or confirms the pending competition registration in the same
// transaction as the report's status change.
func ReviewPaymentReport(reportID, reviewerID uint, approve bool) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		return ReviewPaymentReportTx(tx, reportID, reviewerID, approve)
	})
}

// ReviewPaymentReportTx does the same as ReviewPaymentReport inside an
// existing TX.
func ReviewPaymentReportTx(tx *gorm.DB, reportID, reviewerID uint, approve bool) error {
	var report models.PaymentReport
	if err := tx.First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	if report.Status != "pending" {
		return ErrAlreadyReviewed
	}

	now := time.Now()
	report.ReviewedAt = &now
	report.ReviewedBy = &reviewerID
	if !approve {
		report.Status = "rejected"
		return tx.Save(&report).Error
	}
	report.Status = "approved"
	if err := tx.Save(&report).Error; err != nil {
		return err
	}

	switch report.Purpose {
	case "membership":
		expires := now.Add(membershipPeriod)
		return tx.Model(&models.User{}).
			Where("id = ?", report.UserID).
			Updates(map[string]any{
				"membership_status":     "active",
				"membership_expires_at": expires,
			}).Error
	case "competition":
		return tx.Model(&models.CompetitionRegistration{}).
			Where("id = ? AND status = ?", *report.RegistrationID, "pending_payment").
			Update("status", "confirmed").Error
	}
	return nil
}
