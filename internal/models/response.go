package models

type Resp struct {
	OK   bool        `json:"ok"`
	Info interface{} `json:"info"`
}

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// PagedResp wraps a paginated listing.
type PagedResp struct {
	Meta PageMeta    `json:"meta"`
	Data interface{} `json:"data"`
}
