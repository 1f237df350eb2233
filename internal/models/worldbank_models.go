package models

// World Bank API responses are two-element arrays: [pagination, payload].
// Decoding keeps the payload element and ignores the pagination header.

// WorldBankRef is the {id, value} pair the World Bank API uses for
// nested references (indicator, country, region, income level).
type WorldBankRef struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// WorldBankCountry is one entry of the /country catalog.
type WorldBankCountry struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	CapitalCity string       `json:"capitalCity"`
	Region      WorldBankRef `json:"region"`
	IncomeLevel WorldBankRef `json:"incomeLevel"`
}

// WorldBankIndicator is one entry of the /indicator catalog.
type WorldBankIndicator struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	SourceNote string       `json:"sourceNote"`
	Source     WorldBankRef `json:"source"`
}

// WorldBankObservation is one data point of a country/indicator series.
// Date is the year as a string; Value is null for missing observations.
type WorldBankObservation struct {
	Indicator       WorldBankRef `json:"indicator"`
	Country         WorldBankRef `json:"country"`
	CountryISO3Code string       `json:"countryiso3code"`
	Date            string       `json:"date"`
	Value           *float64     `json:"value"`
}
