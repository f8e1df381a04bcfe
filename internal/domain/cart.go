package domain

// CartLine is one product/quantity pairing in the cart. Product is a
// snapshot taken at add time; later catalog refreshes do not reach into
// existing lines. LineID distinguishes repeat add actions and is synthesized
// from the product id plus the creation timestamp.
type CartLine struct {
	LineID   string  `json:"line_id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartTotal sums price*quantity across lines. No rounding is applied here;
// the presentation layer rounds for display.
func CartTotal(lines []CartLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Product.Price * float64(l.Quantity)
	}
	return total
}
