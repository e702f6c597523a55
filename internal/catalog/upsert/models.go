// internal/catalog/upsert/models.go
package upsert

// Ack is returned once every chunk of an upsert has been accepted.
type Ack struct {
	Index   string `json:"index"`
	Indexed int    `json:"indexed"`
	Chunks  int    `json:"chunks"`
	TookMs  int64  `json:"tookMs"`
	TaskID  string `json:"taskId"`
}

type bulkResponse struct {
	Took   int64                         `json:"took"`
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkItemResponse `json:"items"`
}

type bulkItemResponse struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

type bulkAction struct {
	Index bulkActionMeta `json:"index"`
}

type bulkActionMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}
