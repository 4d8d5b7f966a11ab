package dto

// PostListFilter contains query parameters for the posts listing endpoint.
type PostListFilter struct {
	Platform string
	Status   string
	Page     int
	PerPage  int
}

// UpdatePostRequest captures partial edits to a post.
type UpdatePostRequest struct {
	Title    *string  `json:"title,omitempty"`
	Content  *string  `json:"content,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Status   *string  `json:"status,omitempty"`
	ImageURL *string  `json:"image_url,omitempty"`
}
