package catalog

import "fmt"

// Kind selects one of the three owner tables that carry a products array.
type Kind string

const (
	KindBrand    Kind = "brand"
	KindCategory Kind = "category"
	KindSupplier Kind = "supplier"
)

func (k Kind) table() (string, error) {
	switch k {
	case KindBrand:
		return "brands", nil
	case KindCategory:
		return "categories", nil
	case KindSupplier:
		return "suppliers", nil
	default:
		return "", fmt.Errorf("unknown catalog kind %q", k)
	}
}
