package api

// Auth

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Slots

type SlotRequest struct {
	Location string `json:"location"`
	Type     string `json:"type"`
	Occupied *bool  `json:"isOccupied,omitempty"`
}

// Vehicle logs

type VehicleEntryRequest struct {
	VehicleNumber string `json:"vehicleNumber"`
	UserID        int64  `json:"userId"`
	SlotID        int64  `json:"slotId"`
}

// Reservations

type ReservationRequest struct {
	UserID        int64  `json:"userId"`
	SlotID        int64  `json:"slotId"`
	VehicleNumber string `json:"vehicleNumber"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Type          string `json:"type"`
}

type ReservationUpdateRequest struct {
	SlotID        int64  `json:"slotId"`
	VehicleNumber string `json:"vehicleNumber"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Status        string `json:"status"`
}

// Billing

type PayInvoiceRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type FailInvoiceRequest struct {
	SessionID string `json:"sessionId"`
}

// Users

type UserUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}
