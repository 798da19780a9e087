package main

import "regexp"

// Default limits for CLI commands.
const (
	DefaultRunsLimit = 20
)

// personIDPattern matches a FamilySearch person id such as KWQS-BBQ.
var personIDPattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{3}$`)
