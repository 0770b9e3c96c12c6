package dto

// PageRequest límite para listados.
type PageRequest struct {
	Limit int `query:"limit" validate:"min=1,max=200"`
}

// DefaultPage aplica el valor por defecto si Limit es cero o negativo.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
}

// ErrorResponse cuerpo de error HTTP. Details lleva datos para la UI (ej. solicitado/disponible).
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
}
