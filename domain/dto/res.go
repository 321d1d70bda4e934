package dto

// Res is the generic API envelope.
type Res struct {
	ResponseCode    string      `json:"response_code"`
	ResponseMessage string      `json:"response_message"`
	Data            interface{} `json:"data,omitempty"`
}

// ResLogin carries the issued JWT.
type ResLogin struct {
	Res
	AccessToken string `json:"access_token,omitempty"`
}
