package domain

// UIDResponse is the body of a successful UID query
type UIDResponse struct {
	CardUID string `json:"card_uid" example:"048F2A11"`
}

// ReaderList is the body of the readers endpoint
type ReaderList struct {
	Readers []Reader `json:"readers"`
}

// ReadInput asks for one blocking read
// an empty reader picks the first attached reader, a zero timeout uses the configured default
type ReadInput struct {
	Reader    string `json:"reader" validate:"max=128,reader_name"`
	TimeoutMs int    `json:"timeout_ms" validate:"omitempty,min=1,max=30000"`
}
