package models

// KeysResponse lists the selectable keys of a route and its default date window.
type KeysResponse struct {
	Keys         []string `json:"keys"`
	DefaultStart string   `json:"default_start"`
	DefaultEnd   string   `json:"default_end"`
}
