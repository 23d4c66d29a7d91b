package api

import "feedstash/app/database"

// All endpoints answer with either {"data": ...} or {"error": ...}.

type addSourceRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SourceWithCount annotates a source with its unread item count.
type SourceWithCount struct {
	database.Source
	Count int `json:"count"`
}

type removeSourceResponse struct {
	RemovedItems int64 `json:"removed_items"`
}
