package constants

// fiber Locals keys
const (
	LocRequestID = "reqid"
	LocUserID    = "user_id"
	LocUserRole  = "userRole"
	LocUserEmail = "user_email"
)
