package component

// Name is the registry id of an entity.
type Name struct {
	ID string
}

var NameComponent = NewComponent[Name]()
