package records

import (
	"fmt"
	"strings"
)

// CurrentUserPath is the current user document.
const CurrentUserPath = "/platform/users/current.json"

// PersonsPath returns the persons batch path for ids. Callers keep
// len(ids) at or below MaxPersons.
func PersonsPath(ids []string) string {
	return "/platform/tree/persons.json?pids=" + strings.Join(ids, ",")
}

// PersonSourcesPath returns the sources document of a person.
func PersonSourcesPath(id string) string { return personPath(id, "sources") }

// PersonMemoriesPath returns the memories document of a person.
func PersonMemoriesPath(id string) string { return personPath(id, "memories") }

// PersonNotesPath returns the notes document of a person.
func PersonNotesPath(id string) string { return personPath(id, "notes") }

// PersonOrdinancesPath returns the ordinances document of a person.
func PersonOrdinancesPath(id string) string { return personPath(id, "ordinances") }

// PersonChangesPath returns the change history of a person.
func PersonChangesPath(id string) string { return personPath(id, "changes") }

// CouplePath returns a couple relationship document.
func CouplePath(id string) string {
	return fmt.Sprintf("/platform/tree/couple-relationships/%s.json", id)
}

// CoupleSourcesPath returns the sources document of a couple relationship.
func CoupleSourcesPath(id string) string { return couplePath(id, "sources") }

// CoupleNotesPath returns the notes document of a couple relationship.
func CoupleNotesPath(id string) string { return couplePath(id, "notes") }

// CoupleChangesPath returns the change history of a couple relationship.
func CoupleChangesPath(id string) string { return couplePath(id, "changes") }

func personPath(id, doc string) string {
	return fmt.Sprintf("/platform/tree/persons/%s/%s.json", id, doc)
}

func couplePath(id, doc string) string {
	return fmt.Sprintf("/platform/tree/couple-relationships/%s/%s.json", id, doc)
}
