package models

// Field limits, counted in characters after HTML escaping.
const (
	MaxNameLen        = 100
	MaxDescriptionLen = 500
	MaxCategoryLen    = 50
	MaxImageLen       = 200
)

// Product is one marketplace listing. The JSON shape is the public wire format
// and the on-disk document format.
type Product struct {
	ID          int     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string  `json:"name" gorm:"size:100;not null"`
	Description string  `json:"description" gorm:"size:500;not null"`
	Category    string  `json:"category" gorm:"size:50;index;not null"`
	Price       float64 `json:"price" gorm:"not null"`
	Image       string  `json:"image" gorm:"size:200"` // URL, may be empty
}

// SeedProducts returns the example listings written on first run.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "Chaqueta de cuero vintage",
			Description: "Chaqueta en buen estado, talla M.",
			Category:    "ropa",
			Price:       45.0,
			Image:       "https://images.unsplash.com/photo-1497204085333-6bfcbfd9acef?auto=format&fit=crop&w=400&q=60",
		},
		{
			ID:          2,
			Name:        "Smartphone reacondicionado",
			Description: "Teléfono inteligente reacondicionado, 64 GB de almacenamiento.",
			Category:    "electronica",
			Price:       150.0,
			Image:       "https://images.unsplash.com/photo-1512499617640-c2f999098137?auto=format&fit=crop&w=400&q=60",
		},
		{
			ID:          3,
			Name:        "Mesa de madera reciclada",
			Description: "Mesa hecha con madera recuperada, ideal para comedor o trabajo.",
			Category:    "muebles",
			Price:       80.0,
			Image:       "https://images.unsplash.com/photo-1503602642458-232111445657?auto=format&fit=crop&w=400&q=60",
		},
		{
			ID:          4,
			Name:        "Zapatillas deportivas retro",
			Description: "Modelo clásico en buen estado, talla 42.",
			Category:    "ropa",
			Price:       30.0,
			Image:       "https://images.unsplash.com/photo-1514053026555-49d21d1127a0?auto=format&fit=crop&w=400&q=60",
		},
	}
}
