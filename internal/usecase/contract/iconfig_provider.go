package usecasecontract

import "time"

// IConfigProvider exposes the settings usecases need.
type IConfigProvider interface {
	GetMaxUploadBytes() int64
	GetAuditBatchSize() int
	GetAccessTokenExpiry() time.Duration
	GetSearchResultLimit() int
}
