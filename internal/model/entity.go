package model

// EntityKind distinguishes what a canonical entity refers to.
type EntityKind string

const (
	EntityBank      EntityKind = "bank"
	EntityRegulator EntityKind = "regulator"
	EntityMetal     EntityKind = "metal"
	EntityExchange  EntityKind = "exchange"
)

// Entity is immutable reference data loaded at startup. Resolution goes
// through exact identifier match first, then alias/name substring match.
type Entity struct {
	ID          string     `gorm:"primaryKey;type:varchar(64)"`
	Kind        EntityKind `gorm:"type:varchar(20);not null"`
	DisplayName string     `gorm:"type:varchar(255);not null"`
	Aliases     StringList `gorm:"type:jsonb"`
	Tickers     StringList `gorm:"type:jsonb"`
	RegistryID  string     `gorm:"type:varchar(64)"`
}

func (Entity) TableName() string {
	return "entities"
}
