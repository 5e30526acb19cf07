package kyc

// SubmitInput is a KYC document submission. Images are base64 encoded.
type SubmitInput struct {
	DocumentType   string `json:"document_type" validate:"required,oneof=cpf rg cnh passport"`
	DocumentNumber string `json:"document_number" validate:"required,max=64"`
	DocumentImage  string `json:"document_image" validate:"required,base64"`
	SelfieImage    string `json:"selfie_image" validate:"required,base64"`
}

// SubmitResponse acknowledges a submission.
type SubmitResponse struct {
	KYCID  string `json:"kyc_id"`
	Status string `json:"status"`
}
