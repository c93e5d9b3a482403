package externalmodel

// FMPEarning is one row of the FMP /stable/earnings response.
// Nullable numbers stay pointers so a missing value is distinguishable from zero.
type FMPEarning struct {
	Symbol           string   `json:"symbol"`
	Date             string   `json:"date"`
	EPSActual        *float64 `json:"epsActual"`
	EPSEstimated     *float64 `json:"epsEstimated"`
	RevenueActual    *float64 `json:"revenueActual"`
	RevenueEstimated *float64 `json:"revenueEstimated"`
	GuidanceEPS      *float64 `json:"guidanceEps,omitempty"`
	LastUpdated      string   `json:"lastUpdated,omitempty"`
}

// FMPCalendarRecord is one row of the FMP /stable/earnings-calendar response.
type FMPCalendarRecord struct {
	Symbol           string   `json:"symbol"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	EPSActual        *float64 `json:"epsActual"`
	EPSEstimated     *float64 `json:"epsEstimated"`
	RevenueActual    *float64 `json:"revenueActual"`
	RevenueEstimated *float64 `json:"revenueEstimated"`
}

// FMPProfile is the subset of /stable/profile used for sector and listing lookups.
type FMPProfile struct {
	Symbol            string `json:"symbol"`
	CompanyName       string `json:"companyName"`
	Sector            string `json:"sector"`
	Industry          string `json:"industry"`
	Exchange          string `json:"exchange"`
	IsEtf             bool   `json:"isEtf"`
	IsFund            bool   `json:"isFund"`
	IsActivelyTrading bool   `json:"isActivelyTrading"`
}

// FMPError is the body FMP returns on invalid keys and exhausted plans.
type FMPError struct {
	ErrorMessage string `json:"Error Message"`
}
