package marker

// CreatedResponse carries the new marker id plus the token to embed in
// script text
type CreatedResponse struct {
	MarkerID string `json:"marker_id"`
	Name     string `json:"name,omitempty"`
	Token    string `json:"token"`
}

// CountResponse reports how many records an operation touched
type CountResponse struct {
	Count int `json:"count"`
}

// InsertTokensResponse reports token insertion plus the updated script text
type InsertTokensResponse struct {
	Inserted int    `json:"inserted"`
	Text     string `json:"text"`
}
