package enums

import "fmt"

// ItemType discriminates the catalog entity variants a cart line can point at.
type ItemType string

const (
	ItemTypeProduct          ItemType = "product"
	ItemTypeService          ItemType = "service"
	ItemTypeCompositeProduct ItemType = "composite_product"
)

var validItemTypes = []ItemType{
	ItemTypeProduct,
	ItemTypeService,
	ItemTypeCompositeProduct,
}

// String implements fmt.Stringer.
func (i ItemType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemType.
func (i ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemType converts raw input into an ItemType.
func ParseItemType(value string) (ItemType, error) {
	for _, candidate := range validItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}
