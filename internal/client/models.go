package client

// Wire records exactly as the backend serializes them. Identifier fields are
// pointers so that a missing identifier is distinguishable from zero; the
// normalizer rejects records without one.

type SlotRecord struct {
	SlotID     *int64 `json:"slotId"`
	Type       string `json:"type"`
	Location   string `json:"location"`
	Occupied   bool   `json:"occupied"`
	ReservedBy *int64 `json:"reservedBy,omitempty"`
}

type VehicleLogRecord struct {
	LogID         *int64 `json:"logId"`
	VehicleNumber string `json:"vehicleNumber"`
	EntryTime     string `json:"entryTime"`
	ExitTime      string `json:"exitTime"`
	Duration      string `json:"duration"`
	UserID        *int64 `json:"userId"`
	SlotID        *int64 `json:"slotId"`
	SlotType      string `json:"slotType"`
}

type ReservationRecord struct {
	ReservationID *int64 `json:"reservationId"`
	UserID        *int64 `json:"userId"`
	SlotID        *int64 `json:"slotId"`
	VehicleNumber string `json:"vehicleNumber"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Status        string `json:"status"`
	Type          string `json:"type"`
}

type InvoiceRecord struct {
	InvoiceID     *int64  `json:"invoiceId"`
	UserID        *int64  `json:"userId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	ReservationID *int64  `json:"reservationId"`
	LogID         *int64  `json:"logId"`
}

type UserRecord struct {
	ID    *int64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Response envelopes. Collection endpoints wrap their payload, the per-user
// log and reservation queries return bare arrays, billing wraps in
// {success, data}.

type slotsEnvelope struct {
	Slots []SlotRecord `json:"slots"`
}

type slotEnvelope struct {
	Slot *SlotRecord `json:"slot"`
}

type logsEnvelope struct {
	Logs []VehicleLogRecord `json:"logs"`
}

type logEnvelope struct {
	Log *VehicleLogRecord `json:"log"`
}

type reservationEnvelope struct {
	Reservation *ReservationRecord `json:"reservation"`
}

type usersEnvelope struct {
	Users []UserRecord `json:"users"`
}

type userEnvelope struct {
	User *UserRecord `json:"user"`
}

type billingListEnvelope struct {
	Success bool            `json:"success"`
	Data    []InvoiceRecord `json:"data"`
}

type billingStatusEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  *UserRecord `json:"user"`
}

// Request bodies.

type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type AddSlotRequest struct {
	Location string `json:"location"`
	Type     string `json:"type"`
}

type UpdateSlotRequest struct {
	Location string `json:"location"`
	Type     string `json:"type"`
}

type VehicleEntryRequest struct {
	VehicleNumber string `json:"vehicleNumber"`
	UserID        int64  `json:"userId"`
	SlotID        int64  `json:"slotId"`
}

type CreateReservationRequest struct {
	UserID        int64  `json:"userId"`
	SlotID        int64  `json:"slotId"`
	VehicleNumber string `json:"vehicleNumber"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Type          string `json:"type"`
}

type UpdateReservationRequest struct {
	SlotID        int64  `json:"slotId,omitempty"`
	VehicleNumber string `json:"vehicleNumber,omitempty"`
	StartTime     string `json:"startTime,omitempty"`
	EndTime       string `json:"endTime,omitempty"`
	Status        string `json:"status,omitempty"`
}

type CreateInvoiceRequest struct {
	UserID        int64  `json:"userId"`
	ReservationID *int64 `json:"reservationId"`
	LogID         *int64 `json:"logId"`
	Timestamp     string `json:"timestamp"`
	PaymentMethod string `json:"paymentMethod"`
}
