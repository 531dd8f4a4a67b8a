package domain

// OTPDispatch is the result of asking the backend to send a passcode.
// DevCode is only echoed by non-production backends.
type OTPDispatch struct {
	Message string `json:"message"`
	DevCode string `json:"otp,omitempty"`
}

// OTPVerification is the result of a successful passcode check.
type OTPVerification struct {
	Token    string    `json:"token"`
	Customer *Customer `json:"customer"`
	Config   Config    `json:"config,omitempty"`
}
