package services

// Style is one entry of the fixed portrait style catalog. PriceCents is the
// canvas base price quoted alongside a preview.
type Style struct {
	Tag        string `json:"tag"`
	Label      string `json:"label"`
	Prompt     string `json:"-"`
	PriceCents int    `json:"price_cents"`
}

var styleCatalog = []Style{
	{Tag: "watercolor", Label: "Watercolor", Prompt: "a soft watercolor painting with loose washes of color", PriceCents: 12900},
	{Tag: "oil-painting", Label: "Oil Painting", Prompt: "a classical oil painting with rich impasto brushwork", PriceCents: 18900},
	{Tag: "charcoal", Label: "Charcoal Sketch", Prompt: "a dramatic charcoal sketch with deep shading", PriceCents: 9900},
	{Tag: "pop-art", Label: "Pop Art", Prompt: "a bold pop-art print with flat saturated colors", PriceCents: 14900},
	{Tag: "cartoon", Label: "Cartoon", Prompt: "a playful cartoon illustration with clean outlines", PriceCents: 11900},
	{Tag: "pencil-sketch", Label: "Pencil Sketch", Prompt: "a fine graphite pencil sketch with delicate hatching", PriceCents: 9900},
}

func Styles() []Style {
	out := make([]Style, len(styleCatalog))
	copy(out, styleCatalog)
	return out
}

func StyleByTag(tag string) (Style, bool) {
	for _, s := range styleCatalog {
		if s.Tag == tag {
			return s, true
		}
	}
	return Style{}, false
}
