package models

// RepairService is a static catalog entry. Not persisted.
type RepairService struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
}

var repairCatalog = []RepairService{
	{
		Name:        "Reparación de teléfonos",
		Description: "Servicio especializado en reparación de smartphones y tablets: cambio de pantallas, baterías y puertos.",
		Contact:     "reparasmart@example.com",
	},
	{
		Name:        "Costurera y sastrería",
		Description: "Arreglos de ropa, ajuste de prendas, cambio de cremalleras y dobladillos. Servicio rápido y de confianza.",
		Contact:     "costurera@example.com",
	},
	{
		Name:        "Carpintero",
		Description: "Reparación y restauración de muebles de madera, sillas, mesas y armarios. Reacabados y personalización.",
		Contact:     "carpintero@example.com",
	},
}

// Repairs returns a copy of the repair catalog.
func Repairs() []RepairService {
	out := make([]RepairService, len(repairCatalog))
	copy(out, repairCatalog)
	return out
}
