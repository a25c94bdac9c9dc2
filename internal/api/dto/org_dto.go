package dto

// CreateCompanyRequest payload.
type CreateCompanyRequest struct {
	Name string `json:"name"`
}

// CompanyResponse projection.
type CompanyResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// CreateDivisionRequest payload.
type CreateDivisionRequest struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
}

// DivisionResponse projection.
type DivisionResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
}
