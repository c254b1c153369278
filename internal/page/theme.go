package page

// Theme carries the visual constants of the page. It is passed explicitly to
// every render; there is no global palette.
type Theme struct {
	SideNavBackground string
	NavText           string
	NavHover          string
	TransitionSpeed   string
	FontWeightNormal  int
	FontWeightBold    int
}

// DefaultTheme is the stock palette: light grey side navigation, dark text,
// lighter text on hover.
func DefaultTheme() Theme {
	return Theme{
		SideNavBackground: "#f6f6f6",
		NavText:           "#333",
		NavHover:          "#999",
		TransitionSpeed:   "0.2s",
		FontWeightNormal:  400,
		FontWeightBold:    700,
	}
}

// withDefaults fills unset fields from DefaultTheme.
func (t Theme) withDefaults() Theme {
	d := DefaultTheme()
	if t.SideNavBackground == "" {
		t.SideNavBackground = d.SideNavBackground
	}
	if t.NavText == "" {
		t.NavText = d.NavText
	}
	if t.NavHover == "" {
		t.NavHover = d.NavHover
	}
	if t.TransitionSpeed == "" {
		t.TransitionSpeed = d.TransitionSpeed
	}
	if t.FontWeightNormal == 0 {
		t.FontWeightNormal = d.FontWeightNormal
	}
	if t.FontWeightBold == 0 {
		t.FontWeightBold = d.FontWeightBold
	}
	return t
}
