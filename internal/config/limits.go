package config

import "time"

const (
	// MaxUploadBytes is the largest file accepted for upload. Checked locally
	// so oversized files never reach the network.
	MaxUploadBytes = 5 * 1024 * 1024

	// MaxFileNameLength matches the backend's stored filename column.
	MaxFileNameLength = 255

	// MaxQuestionLength bounds the question sent for draft generation.
	MaxQuestionLength = 2000

	// DefaultTopK is the number of passages retrieved per document.
	DefaultTopK = 3

	// MaxTopK keeps retrieval requests within what the backend serves quickly.
	MaxTopK = 20

	// DefaultPollInterval is the period of the status reconciliation loop.
	DefaultPollInterval = 3 * time.Second

	// DefaultStatusConcurrency bounds in-flight status queries per cycle.
	DefaultStatusConcurrency = 4

	// DefaultIntakeFolderName is the folder uploads land in when none is chosen.
	DefaultIntakeFolderName = "최근 문서함"
)
