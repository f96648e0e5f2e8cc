package services

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ironclub/gym/internal/db"
	"github.com/ironclub/gym/internal/models"
)

// BookClass reserves one seat for user in the given class occurrence. The
// existence, duplicate and capacity checks all run inside the same
// transaction as the counter increment, so two racing requests for the last
// seat cannot both succeed.
func BookClass(classID uint, user models.User) (*models.Attendee, error) {
	var att *models.Attendee
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		a, err := BookClassTx(tx, classID, user)
		att = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return att, nil
}

// BookClassTx does the same as BookClass but inside an existing TX.
func BookClassTx(tx *gorm.DB, classID uint, user models.User) (*models.Attendee, error) {
	var class models.ClassOccurrence
	if err := tx.First(&class, classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	var existing int64
	if err := tx.Model(&models.Attendee{}).
		Where("class_id = ? AND user_id = ?", classID, user.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyBooked
	}

	if !class.Unlimited && class.BookedCount >= class.Capacity {
		return nil, ErrClassFull
	}

	code, err := newBookingCode(tx)
	if err != nil {
		return nil, err
	}
	att := models.Attendee{
		ClassID: classID,
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Code:    code,
	}
	if err := tx.Create(&att).Error; err != nil {
		return nil, err
	}

	// Increment, never overwrite: the counter is the shared resource.
	if err := tx.Model(&models.ClassOccurrence{}).
		Where("id = ?", classID).
		UpdateColumn("booked_count", gorm.Expr("booked_count + 1")).Error; err != nil {
		return nil, err
	}
	return &att, nil
}

// CancelBooking removes the user's seat. Cancelling a booking that does not
// exist is a no-op, not an error.
func CancelBooking(classID, userID uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		return CancelBookingTx(tx, classID, userID)
	})
}

// CancelBookingTx does the same as CancelBooking but inside an existing TX.
func CancelBookingTx(tx *gorm.DB, classID, userID uint) error {
	var att models.Attendee
	err := tx.Where("class_id = ? AND user_id = ?", classID, userID).First(&att).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := tx.Delete(&att).Error; err != nil {
		return err
	}
	// The booked_count > 0 guard keeps the counter from going negative even
	// if it ever drifted from the attendee rows.
	return tx.Model(&models.ClassOccurrence{}).
		Where("id = ? AND booked_count > 0", classID).
		UpdateColumn("booked_count", gorm.Expr("booked_count - 1")).Error
}

// newBookingCode creates a unique BK-XXXXXXXX code (uppercase hex).
func newBookingCode(tx *gorm.DB) (string, error) {
	for i := 0; i < 20; i++ {
		var b [4]byte
		if _, err := rand.Read(b[:]); err != nil {
			return "", err
		}
		code := fmt.Sprintf("BK-%08X", binary.BigEndian.Uint32(b[:]))
		var exists int64
		if err := tx.Model(&models.Attendee{}).Where("code = ?", code).Count(&exists).Error; err != nil {
			return "", err
		}
		if exists == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique booking code")
}
