package domain

// UploadRequest names the object a client wants to write and the content type it will send.
type UploadRequest struct {
	ObjectName  string `json:"fileName" validate:"required"`
	ContentType string `json:"fileType" validate:"required"`
}

// SignedUploadDescriptor is handed back to the client. SignedURL authorizes a single
// PUT of the object; PublicURL is where the object can be read once written.
type SignedUploadDescriptor struct {
	SignedURL string `json:"signedUrl"`
	PublicURL string `json:"publicUrl"`
}
