package analytics

import "github.com/cybershieldio/sdk/pkg/client"

// Appearance is the icon and colour used for a module card.
type Appearance struct {
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	BgColor     string `json:"bgColor"`
	BorderColor string `json:"borderColor"`
}

func appearance(icon, color string) Appearance {
	return Appearance{
		Icon:        icon,
		Color:       "text-" + color + "-600",
		BgColor:     "bg-" + color + "-50",
		BorderColor: "border-" + color + "-200",
	}
}

// AppearanceFor returns the card appearance for a module display name.
// Unknown names get a neutral shield.
func AppearanceFor(name string) Appearance {
	switch name {
	case "Email Security":
		return appearance("mail", "green")
	case "SMS Protection":
		return appearance("message-square", "yellow")
	case "Phone Security":
		return appearance("phone", "red")
	case "Web Scanner":
		return appearance("globe", "purple")
	case "File Scanner":
		return appearance("file-text", "orange")
	default:
		return appearance("shield", "gray")
	}
}

// ModuleRow is one module card of the overview.
type ModuleRow struct {
	client.ModuleSummary
	SuccessRate float64    `json:"successRate"`
	Appearance  Appearance `json:"appearance"`
}

// Overview is the analytics tab content.
type Overview struct {
	TotalThreats int                                  `json:"totalThreats"`
	TotalBlocked int                                  `json:"totalBlocked"`
	SuccessRate  float64                              `json:"successRate"`
	Modules      []ModuleRow                          `json:"modules"`
	Trend        []client.TrendPoint                  `json:"trend"`
	Severity     []client.SeveritySlice               `json:"severity"`
	ModuleTrends map[string][]client.ModuleTrendPoint `json:"moduleTrends"`
	RadarData    []client.RadarPoint                  `json:"radarData"`
}

// NewOverview builds the overview for a.
func NewOverview(a client.Analytics) Overview {
	a.Normalize()
	o := Overview{
		TotalThreats: a.TotalThreats,
		TotalBlocked: a.TotalBlocked,
		SuccessRate:  a.SuccessRate,
		Modules:      make([]ModuleRow, 0, len(a.Modules)),
		Trend:        a.Trend,
		Severity:     a.Severity,
		ModuleTrends: a.ModuleTrends,
		RadarData:    a.RadarData,
	}
	for _, m := range a.Modules {
		o.Modules = append(o.Modules, ModuleRow{
			ModuleSummary: m,
			SuccessRate:   ModuleSuccessRate(m),
			Appearance:    AppearanceFor(m.Name),
		})
	}
	return o
}
