package storage

// SchemaVersion is stamped into every saved document. Reads merge older
// documents over the current defaults, so bumping it never needs a migration
// step for added fields.
const SchemaVersion = 3

// StateVersion is the document format minor version, stamped alongside the
// schema version on every write.
const StateVersion = 1

// StateKey is the default key the whole document lives under.
const StateKey = "sales_offer_state"

type PersistedState struct {
	SchemaVersion   int                 `json:"schemaVersion"`
	CurrentOffer    Offer               `json:"currentOffer"`
	Branding        Branding            `json:"branding"`
	Labels          Labels              `json:"labels"`
	Templates       []Template          `json:"templates"`
	Settings        Settings            `json:"settings"`
	CustomDropdowns map[string][]string `json:"customDropdowns"`
	APIKey          string              `json:"apiKey"`
	Version         int                 `json:"version"`
}

// Offer is the record being edited. Financial inputs come from the form,
// the derived outputs are written back by the calculation engine.
type Offer struct {
	ProjectName string `json:"projectName"`
	UnitNumber  string `json:"unitNumber"`
	UnitType    string `json:"unitType"` // apartment | villa
	Category    string `json:"category"` // offplan | ready

	InternalArea      float64 `json:"internalArea"`
	BalconyArea       float64 `json:"balconyArea"`
	VillaInternalArea float64 `json:"villaInternalArea"`
	TerraceArea       float64 `json:"terraceArea"`
	TotalArea         string  `json:"totalArea"` // display string, "123.40 sq.m" or empty

	OriginalPrice       float64 `json:"originalPrice"`
	SellingPrice        float64 `json:"sellingPrice"`
	ResaleClausePercent float64 `json:"resaleClausePercent"`
	AmountPaidPercent   float64 `json:"amountPaidPercent"`
	AmountPaidValue     float64 `json:"amountPaidValue"`

	AdminFee       float64 `json:"adminFee"`
	TerminationFee float64 `json:"terminationFee"`
	ElectronicFee  float64 `json:"electronicFee"`

	Refund    float64 `json:"refund"`
	Balance   float64 `json:"balance"`
	Premium   float64 `json:"premium"`
	ADGMFee   float64 `json:"adgmFee"`
	AgencyFee float64 `json:"agencyFee"`

	TotalPayable string `json:"totalPayable"`

	PaymentPlan []PaymentRow `json:"paymentPlan"`

	// Data-URL encoded floor plan, may be large; the save ladder is allowed
	// to recompress or drop it.
	FloorPlanImage string `json:"floorPlanImage"`

	Notes string `json:"notes"`
}

// PaymentRow percentages are kept as the raw form strings; consistency is
// checked by the payment-plan validator, never at write time.
type PaymentRow struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Percentage string `json:"percentage"`
	Amount     string `json:"amount"` // numeric string or empty, empty means auto
}

type Branding struct {
	CompanyName  string `json:"companyName"`
	AgentName    string `json:"agentName"`
	AgentPhone   string `json:"agentPhone"`
	AgentEmail   string `json:"agentEmail"`
	PrimaryColor string `json:"primaryColor"`
	LogoImage    string `json:"logoImage"` // data-URL, same ladder rules as the floor plan
}

// Labels are the user-overridable captions printed on the offer sheet.
type Labels map[string]string

type Settings struct {
	AutoCalculate         bool     `json:"autoCalculate"`
	CurrentTemplateLayout string   `json:"currentTemplateLayout"`
	LockedFields          []string `json:"lockedFields"`
}

// Template is a named snapshot of an offer plus its branding. Immutable once
// created, removed only by explicit deletion.
type Template struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedAt string   `json:"createdAt"`
	Data      Offer    `json:"data"`
	Branding  Branding `json:"branding"`
}

// Snapshot is the export/import exchange document. Templates, settings and
// the API key deliberately never leave through it.
type Snapshot struct {
	ExportedAt   string   `json:"exportedAt"`
	CurrentOffer Offer    `json:"currentOffer"`
	Branding     Branding `json:"branding"`
	Labels       Labels   `json:"labels"`
}
