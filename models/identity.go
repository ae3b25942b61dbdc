package models

// Identity là claim đã được identity provider xác thực, truyền tường minh vào từng thao tác.
type Identity struct {
	Subject  string `json:"subject"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Provider string `json:"provider"`
}

func (i *Identity) Valid() bool {
	return i != nil && i.Subject != "" && i.Email != ""
}
