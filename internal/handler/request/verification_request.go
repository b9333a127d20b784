package request

type SubmitVerificationRequest struct {
	Handle string `json:"handle" binding:"required,handle"`
}

type ReviewCreatorRequest struct {
	Decision string `json:"decision" binding:"required,oneof=verified rejected"`
}
