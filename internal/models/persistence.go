package models

// StateVersion is the current on-disk state format version.
const StateVersion = 1

// AccountState is everything persisted for one account between runs.
type AccountState struct {
	Credentials *AccountCredentials `json:"credentials,omitempty"`
	Snapshot    *AccountSnapshot    `json:"snapshot,omitempty"`
	Catalog     *DrinkCatalog       `json:"catalog,omitempty"`
}

// StateFile is the versioned envelope written to disk, keyed by
// account id.
type StateFile struct {
	Version  int                      `json:"version"`
	Accounts map[string]*AccountState `json:"accounts"`
}
