package request

type RequestOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=7,max=20"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,min=7,max=20"`
	OTP   string `json:"otp" validate:"required,len=6"`
}
