package dto

// PageRequest paginación para listados (page y limit positivos).
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize aplica valores por defecto y valida. Devuelve false si page o limit
// vienen negativos o cero habiendo sido enviados explícitamente.
func (p *PageRequest) Normalize() bool {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 10
	}
	if p.Page < 0 || p.Limit < 0 {
		return false
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return true
}

// Offset convierte page/limit a offset SQL.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ListResponse envoltura estándar de listados paginados.
type ListResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
