package dto

// ErrorResponse es la respuesta estándar de error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse es la respuesta estándar de éxito.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Pagination describe los metadatos de paginación de un listado.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
