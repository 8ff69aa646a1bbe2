package model

import "gorm.io/datatypes"

// StringList is stored as a jsonb array.
type StringList = datatypes.JSONSlice[string]
