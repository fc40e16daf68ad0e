package transport

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=1"`
	Slug        string   `json:"slug" validate:"required,productslug"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Pricing     string   `json:"pricing"`
	Features    []string `json:"features"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	APIEnabled  bool     `json:"api_enabled"`
}

type SetAPIAccessRequest struct {
	APIEnabled *bool `json:"api_enabled" validate:"required"`
}

type CreateKeyRequest struct {
	Name      string `json:"name"`
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// CreatedKey carries the plaintext key. It is only ever returned once.
type CreatedKey struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	KeyPrefix string `json:"key_prefix"`
	ProductID string `json:"product_id"`
}
