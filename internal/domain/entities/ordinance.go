package entities

// OrdinanceStatus is the recorded state of an ordinance.
type OrdinanceStatus string

const (
	OrdinanceQualified OrdinanceStatus = "QUALIFIED"
	OrdinanceCompleted OrdinanceStatus = "COMPLETED"
	OrdinanceCanceled  OrdinanceStatus = "CANCELED"
	OrdinanceSubmitted OrdinanceStatus = "SUBMITTED"
	OrdinanceInfant    OrdinanceStatus = "INFANT"
)

var ordinanceStatusURIs = map[string]OrdinanceStatus{
	"http://familysearch.org/v1/Ready":      OrdinanceQualified,
	"http://familysearch.org/v1/Completed":  OrdinanceCompleted,
	"http://familysearch.org/v1/Cancelled":  OrdinanceCanceled,
	"http://familysearch.org/v1/InProgress": OrdinanceSubmitted,
	"http://familysearch.org/v1/NotNeeded":  OrdinanceInfant,
}

// OrdinanceStatusFromURI maps a remote status URI to a status.
// Unknown URIs yield "".
func OrdinanceStatusFromURI(uri string) OrdinanceStatus {
	return ordinanceStatusURIs[uri]
}

// IsValid reports whether s is one of the known statuses.
func (s OrdinanceStatus) IsValid() bool {
	switch s {
	case OrdinanceQualified, OrdinanceCompleted, OrdinanceCanceled, OrdinanceSubmitted, OrdinanceInfant:
		return true
	default:
		return false
	}
}

// Ordinance is a ceremonial record attached to an individual or a family.
// Family is set only for child-to-parents sealings and names the family
// by key; the owning graph resolves it.
type Ordinance struct {
	Date       string          `json:"date,omitempty"`
	TempleCode string          `json:"temple_code,omitempty"`
	Status     OrdinanceStatus `json:"status,omitempty"`
	Family     *FamilyKey      `json:"family,omitempty"`
}
