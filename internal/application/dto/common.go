package dto

import "math"

// PageRequest paginación por página (1..n) y límite.
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// DefaultPage aplica valores por defecto: página 1, límite 10, máximo 100.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset desplazamiento equivalente para el almacenamiento.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination metadatos de página en respuestas.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination calcula el total de páginas.
func NewPagination(p PageRequest, total int) *Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return &Pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}

// Envelope cuerpo estándar de respuesta exitosa.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Total      *int        `json:"total,omitempty"`
	Message    string      `json:"message"`
}

// ErrorResponse cuerpo de error HTTP. Errors lista todas las violaciones de validación.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}
