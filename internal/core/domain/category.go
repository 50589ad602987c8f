package domain

// Category is a static label a task can be filed under.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var categories = []Category{
	{ID: "venda", Name: "Venda de Equipamentos", Icon: "🛒"},
	{ID: "reparo_pc", Name: "Reparação de PC", Icon: "💻"},
	{ID: "reparo_celular", Name: "Reparação de Celular", Icon: "📱"},
	{ID: "reparo_impressora", Name: "Reparação de Impressora", Icon: "🖨️"},
	{ID: "instalacao_software", Name: "Instalação de Software", Icon: "📀"},
	{ID: "rede", Name: "Configuração de Rede", Icon: "🌐"},
	{ID: "backup", Name: "Backup de Dados", Icon: "💾"},
	{ID: "outros", Name: "Outros Serviços", Icon: "🔧"},
}

// Categories returns the catalog in display order. The slice is a copy.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValidCategory reports whether id names a catalog entry.
func IsValidCategory(id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
