package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"parkdeck/internal/entities"
)

const timeLayout = "02 Jan 2006 15:04 MST"

// NotifyService sends reservation confirmations to the booking owner.
// Sends are asynchronous and best-effort: a failed notification is logged,
// never surfaced to the caller.
type NotifyService struct{}

func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

func (s *NotifyService) SendReservationEmail(user entities.User, reservation entities.Reservation, status string) {
	subject := fmt.Sprintf("Your ParkDeck reservation is %s - #%d", status, reservation.ID)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour reservation at ParkDeck is %s.\n\n"+
			"Reservation Details:\n"+
			"Reservation: #%d\n"+
			"Vehicle: %s\n"+
			"Slot: %d\n"+
			"From: %s\n"+
			"To: %s\n"+
			"Amount: %d\n\n"+
			"Thank you for choosing ParkDeck.",
		user.Name, status, reservation.ID, reservation.VehicleNumber, reservation.SlotID,
		reservation.StartTime.Format(timeLayout), reservation.EndTime.Format(timeLayout),
		reservation.Amount,
	)

	go func(toEmail, toName, subject, body string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, body); err != nil {
			logrus.Warnf("confirmation email for reservation %d failed: %v", reservation.ID, err)
		}
	}(user.Email, user.Name, subject, body)
}

func (s *NotifyService) SendReservationSMS(user entities.User, reservation entities.Reservation, status string) {
	if user.Phone == "" || user.Phone == "N/A" {
		return
	}
	message := fmt.Sprintf("ParkDeck: reservation #%d is %s!\nFrom: %s.\nMore details in your email.",
		reservation.ID, status, reservation.StartTime.Format("02/01 15:04"))

	go func(phone, message string) {
		if err := SendSMS(phone, message); err != nil {
			logrus.Warnf("confirmation SMS for reservation %d failed: %v", reservation.ID, err)
		}
	}(user.Phone, message)
}
