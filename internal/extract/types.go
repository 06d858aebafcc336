package extract

// AdsType is the advertisement category of a listing.
type AdsType string

const (
	AdsTypeSale AdsType = "sale"
	AdsTypeRent AdsType = "rent"
)

// PropertyType is the category of the real-estate unit.
type PropertyType string

const (
	PropertyTypeHouse        PropertyType = "house"
	PropertyTypeApartment    PropertyType = "apartment"
	PropertyTypeBoardingRoom PropertyType = "boarding-room"
	PropertyTypeVilla        PropertyType = "villa"
	PropertyTypeHotel        PropertyType = "hotel"
)

// Request describes one extraction run. It is immutable once validated.
type Request struct {
	AdsType      AdsType      `validate:"oneof=sale rent"`
	Region       string       `validate:"required"`
	PropertyType PropertyType `validate:"oneof=house apartment boarding-room villa hotel"`
	NumPages     int          `validate:"gt=0"`

	// AdminAreas disambiguates a listing's location text: the first span
	// whose text contains one of these names wins.
	AdminAreas []string
}

// ListingRecord is one parsed listing card. Scraped fields are nil when the
// source markup omits the corresponding sub-element.
type ListingRecord struct {
	Link               *string
	Name               *string
	PriceRaw           *string
	Location           string
	LotSizeRaw         *string
	BuildingSizeRaw    *string
	BedroomsRaw        *string
	BathroomsRaw       *string
	CarportsRaw        *string
	AdditionalFeatures []string
	AdsType            AdsType
	PropertyType       PropertyType
}

// StopReason explains why an extraction run ended.
type StopReason string

const (
	StopExhaustedPages StopReason = "exhausted-pages"
	StopEmptyPage      StopReason = "empty-page"
	StopCancelled      StopReason = "cancelled"
)

// Result accumulates the output of one pipeline run. Records keep discovery
// order. PagesFetched counts pages that returned a 200 and were parsed.
type Result struct {
	Records      []ListingRecord
	PagesFetched int
	StoppedEarly bool
	Reason       StopReason
}
