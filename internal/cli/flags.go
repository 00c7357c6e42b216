package cli

import "testr/internal/config"

// Flags holds command-line flags
type Flags struct {
	Keyword    string
	Markers    string
	Extra      []string
	UseLast    bool
	SaveLast   bool
	ForgetLast bool
	HistoryN   int
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Keyword:    f.Keyword,
		Markers:    f.Markers,
		Extra:      f.Extra,
		UseLast:    f.UseLast,
		SaveLast:   f.SaveLast,
		ForgetLast: f.ForgetLast,
		HistoryN:   f.HistoryN,
	}
}
