package auth

// Claims es lo mínimo que el servicio necesita del proveedor de identidad.
type Claims struct {
	UserID string // subject del proveedor
	Email  string
	Name   string
}
