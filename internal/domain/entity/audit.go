package entity

// AuditReport tallies one integrity sweep over the post collection.
type AuditReport struct {
	DryRun    bool `json:"dryRun"`
	Examined  int  `json:"examined"`
	Corrected int  `json:"corrected"`
	Deleted   int  `json:"deleted"`
	Unchanged int  `json:"unchanged"`
	Pending   int  `json:"pending"`
	Failed    int  `json:"failed"`
}

// Changes is the number of records the sweep mutated (or would have).
func (r AuditReport) Changes() int {
	return r.Corrected + r.Deleted
}

// PurgeReport tallies a bulk media removal.
type PurgeReport struct {
	DryRun             bool          `json:"dryRun"`
	Category           MediaCategory `json:"category"`
	MediaMatched       int           `json:"mediaMatched"`
	PostsMarkedPending int           `json:"postsMarkedPending"`
	MediaDeleted       int64         `json:"mediaDeleted"`
}

// StoreStats summarises the contents of the datastore.
type StoreStats struct {
	MediaByCategory map[MediaCategory]int64 `json:"mediaByCategory"`
	MediaBytes      int64                   `json:"mediaBytes"`
	Posts           int64                   `json:"posts"`
	PendingPosts    int64                   `json:"pendingPosts"`
	Users           int64                   `json:"users"`
}
