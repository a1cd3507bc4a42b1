package enums

import "fmt"

// Flow selects the checkout variant a session runs in. Sales gate on stock and
// require a payment method; purchases exclude carted products and allow free
// quantity and cost edits.
type Flow string

const (
	FlowSale     Flow = "sale"
	FlowPurchase Flow = "purchase"
)

var validFlows = []Flow{
	FlowSale,
	FlowPurchase,
}

// String implements fmt.Stringer.
func (f Flow) String() string {
	return string(f)
}

// IsValid reports whether the value is a known Flow.
func (f Flow) IsValid() bool {
	for _, candidate := range validFlows {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFlow converts raw input into a Flow.
func ParseFlow(value string) (Flow, error) {
	for _, candidate := range validFlows {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid flow %q", value)
}
