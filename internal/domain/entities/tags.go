package entities

// Fact type URIs that need special handling during conversion.
const (
	FactTypeBirth       = "http://gedcomx.org/Birth"
	FactTypeChristening = "http://gedcomx.org/Christening"
	FactTypeDeath       = "http://gedcomx.org/Death"
	FactTypeBurial      = "http://gedcomx.org/Burial"
	FactTypeCremation   = "http://gedcomx.org/Cremation"
	FactTypeMarriage    = "http://gedcomx.org/Marriage"
	FactTypeDivorce     = "http://gedcomx.org/Divorce"
	FactTypeAnnulment   = "http://gedcomx.org/Annulment"
	FactTypeLifeSketch  = "http://familysearch.org/v1/LifeSketch"

	// CustomFactPrefix prefixes fact types that carry their own label.
	CustomFactPrefix = "data:,"
)

// FactTags maps known fact type URIs to record tags.
var FactTags = map[string]string{
	FactTypeBirth:                                "BIRT",
	FactTypeChristening:                          "CHR",
	FactTypeDeath:                                "DEAT",
	FactTypeBurial:                               "BURI",
	"http://gedcomx.org/PhysicalDescription":     "DSCR",
	"http://gedcomx.org/Occupation":              "OCCU",
	"http://gedcomx.org/MilitaryService":         "_MILT",
	FactTypeMarriage:                             "MARR",
	FactTypeDivorce:                              "DIV",
	FactTypeAnnulment:                            "ANUL",
	"http://gedcomx.org/CommonLawMarriage":       "_COML",
	"http://gedcomx.org/BarMitzvah":              "BARM",
	"http://gedcomx.org/BatMitzvah":              "BASM",
	"http://gedcomx.org/Naturalization":          "NATU",
	"http://gedcomx.org/Residence":               "RESI",
	"http://gedcomx.org/Religion":                "RELI",
	"http://familysearch.org/v1/TitleOfNobility": "TITL",
	FactTypeCremation:                            "CREM",
	"http://gedcomx.org/Caste":                   "CAST",
	"http://gedcomx.org/Nationality":             "NATI",
}

// FactTypes is the reverse of FactTags.
var FactTypes = reverse(FactTags)

// CustomFactLabels maps fact types written as labelled custom events.
var CustomFactLabels = map[string]string{
	"http://gedcomx.org/Stillbirth":          "Stillborn",
	"http://familysearch.org/v1/Affiliation": "Affiliation",
	"http://gedcomx.org/Clan":                "Clan Name",
	"http://gedcomx.org/NationalId":          "National Identification",
	"http://gedcomx.org/Ethnicity":           "Race",
	"http://familysearch.org/v1/TribeName":   "Tribe Name",
}

var occurrenceTypes = map[string]bool{
	FactTypeBirth:       true,
	FactTypeChristening: true,
	FactTypeDeath:       true,
	FactTypeBurial:      true,
	FactTypeCremation:   true,
	FactTypeMarriage:    true,
	FactTypeDivorce:     true,
	FactTypeAnnulment:   true,
}

func reverse(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
