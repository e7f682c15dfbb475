package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogRawData []byte

// catalogFile is the top-level structure of the embedded YAML.
type catalogFile struct {
	Products []Product `yaml:"products"`
	Services []Service `yaml:"services"`
}

// Catalog provides lazy-loaded access to the embedded product/service catalog.
type Catalog struct {
	once     sync.Once
	products []Product
	services []Service
	err      error
}

// NewCatalog creates a Catalog that parses the embedded YAML on first access.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Products returns a copy of all catalog products.
func (c *Catalog) Products() ([]Product, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	cp := make([]Product, len(c.products))
	copy(cp, c.products)
	return cp, nil
}

// Services returns a copy of all catalog services.
func (c *Catalog) Services() ([]Service, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	cp := make([]Service, len(c.services))
	copy(cp, c.services)
	return cp, nil
}

// FindProduct returns the product with the given ID.
func (c *Catalog) FindProduct(id string) (Product, bool, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return Product{}, false, c.err
	}
	for _, p := range c.products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Product{}, false, nil
}

// FindService returns the service with the given ID.
func (c *Catalog) FindService(id string) (Service, bool, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return Service{}, false, c.err
	}
	for _, s := range c.services {
		if s.ID == id {
			return s, true, nil
		}
	}
	return Service{}, false, nil
}

// load parses the embedded YAML catalog data.
func (c *Catalog) load() {
	var f catalogFile
	if err := yaml.Unmarshal(catalogRawData, &f); err != nil {
		c.err = fmt.Errorf("catalog: parse yaml: %w", err)
		return
	}
	c.products = f.Products
	c.services = f.Services
}
