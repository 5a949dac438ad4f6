package analysis

// SalesType is the sales-category filter applied to the proportion chart.
type SalesType string

const (
	SalesAll    SalesType = "all"
	SalesOnline SalesType = "online"
	SalesStores SalesType = "stores"
)

var SalesTypes = []SalesType{SalesAll, SalesOnline, SalesStores}

func (t SalesType) Label() string {
	switch t {
	case SalesOnline:
		return "Online"
	case SalesStores:
		return "Stores"
	}
	return "All"
}

func ParseSalesType(s string) (SalesType, bool) {
	for _, t := range SalesTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Next returns the value after t, wrapping around.
func (t SalesType) Next() SalesType {
	for i, v := range SalesTypes {
		if v == t {
			return SalesTypes[(i+1)%len(SalesTypes)]
		}
	}
	return SalesAll
}

// CategoryFilter holds the selected sales type.
type CategoryFilter struct {
	current SalesType
}

func NewCategoryFilter() CategoryFilter {
	return CategoryFilter{current: SalesAll}
}

// Set stores v as given. Callers only pass values produced by the UI
// controls.
func (c *CategoryFilter) Set(v SalesType) {
	c.current = v
}

func (c *CategoryFilter) Cycle() {
	c.current = c.Current().Next()
}

func (c CategoryFilter) Current() SalesType {
	if c.current == "" {
		return SalesAll
	}
	return c.current
}
