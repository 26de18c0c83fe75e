package importer

// Status is the terminal state of a volume.
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusInvalidData Status = "invalidData"
)

// Record selects a journal to import and optional collections for it.
type Record struct {
	JournalID   string   `json:"journal_id"`
	Collections []string `json:"collections,omitempty"`
}

// Outcome is the result of one attempted volume.
type Outcome struct {
	ProcessTitle    string `json:"process_title"`
	JournalID       string `json:"journal_id"`
	VolumeFolder    string `json:"volume_folder"`
	Status          Status `json:"status"`
	ErrorKind       string `json:"error_kind,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
	MetadataFile    string `json:"metadata_file,omitempty"`
	ImageCount      int    `json:"image_count"`
	CleanupWarnings int    `json:"cleanup_warnings,omitempty"`
}

// Summary counts outcomes by status.
type Summary struct {
	Completed   int `json:"completed"`
	InvalidData int `json:"invalid_data"`
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusCompleted:
			s.Completed++
		case StatusInvalidData:
			s.InvalidData++
		}
	}
	return s
}
