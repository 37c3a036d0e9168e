package common

type ThreadStatus string

const (
	StatusOpen   ThreadStatus = "open"
	StatusClosed ThreadStatus = "closed"
)

// Attachment is the metadata returned by the attachment broker and embedded
// in messages. It is a value type; the bytes live in blob storage.
type Attachment struct {
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	URL          string `json:"url"`
	Mimetype     string `json:"mimetype"`
	SizeBytes    int64  `json:"size_bytes"`
}

// BlobRef is what blob storage hands back after a successful put.
type BlobRef struct {
	URL        string
	StoredName string
}
