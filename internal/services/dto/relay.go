package dto

// RelayRequest - тело POST /api/upload
type RelayRequest struct {
	File string `json:"file" validate:"required,is-data-uri"`
}

// RelayResponse - нормализованный успешный ответ
type RelayResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Preview string `json:"preview"`
}

// ProvidersResponse - ответ GET /api/providers
type ProvidersResponse struct {
	Providers []string `json:"providers"`
	Default   string   `json:"default"`
}
