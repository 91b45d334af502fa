package response

import "time"

// PhoneProofResponse carries the signed attestation the update call
// later consumes as proof that the phone passed OTP verification.
type PhoneProofResponse struct {
	Phone      string    `json:"phone"`
	PhoneToken string    `json:"phone_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}
