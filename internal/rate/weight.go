package rate

const (
	// cubicDivisor converts cm³ into volumetric kilograms.
	cubicDivisor = 6000
	// cubicThreshold is the volumetric weight below which physical weight
	// is always used.
	cubicThreshold = 5
)

// Package is the shippable weight and declared value of a cart.
type Package struct {
	Weight float64
	Amount float64
}

// PhysicalWeight returns the item weight in kilograms. Unknown units weigh
// nothing.
func PhysicalWeight(w *Weight) float64 {
	if w == nil || w.Value == 0 {
		return 0
	}
	switch w.Unit {
	case "kg":
		return w.Value
	case "g":
		return w.Value / 1000
	case "mg":
		return w.Value / 1000000
	}
	return 0
}

func toCentimeters(d *Dimension) float64 {
	if d == nil || d.Value == 0 {
		return 0
	}
	switch d.Unit {
	case "cm":
		return d.Value
	case "m":
		return d.Value * 100
	case "mm":
		return d.Value / 10
	}
	return 0
}

// CubicWeight multiplies the usable sides in centimeters and divides by
// 6000. The product starts at 1, so an item without a dimensions object
// has cubic weight 1 and one with only some sides uses just those.
func CubicWeight(d *Dimensions) float64 {
	cubic := 1.0
	if d == nil {
		return cubic
	}
	for _, side := range []*Dimension{d.Height, d.Width, d.Length} {
		if cm := toCentimeters(side); cm > 0 {
			cubic *= cm
		}
	}
	if cubic > 0 {
		cubic /= cubicDivisor
	}
	return cubic
}

// ItemWeight picks the weight charged for one unit of the item.
func ItemWeight(it Item) float64 {
	physical := PhysicalWeight(it.Weight)
	cubic := CubicWeight(it.Dimensions)
	if cubic < cubicThreshold || physical > cubic {
		return physical
	}
	return cubic
}

// MeasurePackage sums the chargeable weight of all items and the order
// amount. A non-zero subtotal replaces the item sum.
func MeasurePackage(items []Item, subtotal NullFloat) Package {
	var pkg Package
	useSubtotal := subtotal.truthy()
	if useSubtotal {
		pkg.Amount = subtotal.Float64
	}
	for _, it := range items {
		if !useSubtotal {
			pkg.Amount += it.Price * it.Quantity
		}
		pkg.Weight += it.Quantity * ItemWeight(it)
	}
	return pkg
}
