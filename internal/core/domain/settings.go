package domain

// Option keys persisted by the host.
const (
	OptionStoreGUID          = "wc_connect_store_guid"
	OptionTimeDiff           = "time_diff"
	OptionLastServicesUpdate = "wc_connect_services_last_update"
	OptionLastHeartbeat      = "wc_connect_last_heartbeat"
	OptionLastRateRequest    = "wc_connect_last_rate_request"
)

// SettingsKey is the body key under which contextual metadata is sent.
const SettingsKey = "settings"

// StoreProfile is the host-supplied description of the store and its environment.
type StoreProfile struct {
	Locale         string
	BaseCity       string
	BaseCountry    string
	BaseState      string
	Currency       string
	DimensionUnit  string
	WeightUnit     string
	JetpackVersion string
	WCVersion      string
	WPVersion      string
	ActiveServices []string
	Staging        bool
}

// Settings is the default metadata merged into every request body.
type Settings struct {
	StoreGUID          string   `json:"store_guid"`
	BaseCity           string   `json:"base_city"`
	BaseCountry        string   `json:"base_country"`
	BaseState          string   `json:"base_state"`
	Currency           string   `json:"currency"`
	DimensionUnit      string   `json:"dimension_unit"`
	JetpackVersion     string   `json:"jetpack_version"`
	WCVersion          string   `json:"wc_version"`
	WeightUnit         string   `json:"weight_unit"`
	WPVersion          string   `json:"wp_version"`
	LastServicesUpdate int64    `json:"last_services_update"`
	LastHeartbeat      int64    `json:"last_heartbeat"`
	LastRateRequest    int64    `json:"last_rate_request"`
	ActiveServices     []string `json:"active_services"`
	DisableStats       bool     `json:"disable_stats"`
}

// Map returns the settings keyed by their wire names.
func (s Settings) Map() map[string]any {
	active := s.ActiveServices
	if active == nil {
		active = []string{}
	}
	return map[string]any{
		"store_guid":           s.StoreGUID,
		"base_city":            s.BaseCity,
		"base_country":         s.BaseCountry,
		"base_state":           s.BaseState,
		"currency":             s.Currency,
		"dimension_unit":       s.DimensionUnit,
		"jetpack_version":      s.JetpackVersion,
		"wc_version":           s.WCVersion,
		"weight_unit":          s.WeightUnit,
		"wp_version":           s.WPVersion,
		"last_services_update": s.LastServicesUpdate,
		"last_heartbeat":       s.LastHeartbeat,
		"last_rate_request":    s.LastRateRequest,
		"active_services":      active,
		"disable_stats":        s.DisableStats,
	}
}
