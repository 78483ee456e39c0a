package dto

// ContactRequest representa la solicitud de contacto con un proveedor.
type ContactRequest struct {
	ProviderID string  `json:"provider_id" binding:"required"`
	ListingID  *string `json:"listing_id"`
}

// HireOutcomeRequest registra si la contratación se concretó o no.
type HireOutcomeRequest struct {
	Hired *bool `json:"hired" binding:"required"`
}

// FileReportRequest representa la denuncia de un cliente sobre un servicio.
type FileReportRequest struct {
	EngagementID string `json:"engagement_id" binding:"required"`
	Motive       string `json:"motive" binding:"required"`
	Description  string `json:"description" binding:"required"`
}

// ResolveReportRequest es la resolución administrativa de un reporte.
type ResolveReportRequest struct {
	Status       string  `json:"status" binding:"required"`
	AdminComment *string `json:"admin_comment"`
}

// CreateListingRequest representa la publicación de un servicio.
type CreateListingRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	Category    string   `json:"category" binding:"required"`
	Price       *float64 `json:"price"`
}

// SubscribeRequest inicia el pago de un plan de suscripción.
type SubscribeRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// RegisterRequest representa el alta de una cuenta nueva.
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone"`
}

// LoginRequest contiene las credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest contiene el refresh token a renovar.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
