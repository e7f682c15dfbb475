package catalog

// Product is a priced hardware item from the embedded catalog.
type Product struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Brand    string  `yaml:"brand,omitempty" json:"brand,omitempty"`
	Category string  `yaml:"category" json:"category"`
	Unit     string  `yaml:"unit" json:"unit"`
	Price    float64 `yaml:"price" json:"price"`
}

// Service is a priced labor item from the embedded catalog.
type Service struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Category    string  `yaml:"category" json:"category"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Unit        string  `yaml:"unit,omitempty" json:"unit,omitempty"`
	Price       float64 `yaml:"price" json:"price"`
}
